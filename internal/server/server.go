// Package server exposes report views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/assayreport/internal/logger"
	"github.com/KaramelBytes/assayreport/internal/report"
)

// Options configures the service.
type Options struct {
	// Source is reported by /api/overview.
	Source string
	// BinWidth is the histogram default when bin_width is absent.
	BinWidth float64
	Log      *logger.Logger
	Metrics  *Metrics
}

// Server serves one immutable report engine. Handlers share it without locking.
type Server struct {
	engine   *report.Engine
	source   string
	binWidth float64
	log      *logger.Logger
	metrics  *Metrics
	router   *gin.Engine
}

// New builds the router.
func New(e *report.Engine, opt Options) *Server {
	if opt.Log == nil {
		opt.Log = logger.Nop()
	}
	if opt.Metrics == nil {
		opt.Metrics = NewMetrics()
	}
	if opt.BinWidth <= 0 {
		opt.BinWidth = 5
	}
	s := &Server{
		engine:   e,
		source:   opt.Source,
		binWidth: opt.BinWidth,
		log:      opt.Log,
		metrics:  opt.Metrics,
	}
	s.metrics.SetSamples(e.Overview().Samples)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(s.log))
	r.Use(Instrument(s.metrics))

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/overview", s.overview)
		api.GET("/boreholes", s.boreholes)
		api.GET("/boreholes/summary", s.boreholeSummary)
		api.GET("/boreholes/:id/profile", s.profile)
		api.GET("/localities", s.localities)
		api.GET("/histogram", s.histogram)
		api.GET("/buckets", s.buckets)
		api.GET("/classify", s.classify)
	}
	r.NoRoute(func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, CodeNotFound, fmt.Errorf("no route for %s", c.Request.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("HTTP server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
