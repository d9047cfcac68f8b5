package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/report"
)

// BucketView is the JSON form of a bucket; Upper is null for the open bucket.
type BucketView struct {
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper"`
	Label string   `json:"label"`
	Color string   `json:"color"`
	Range string   `json:"range"`
}

func bucketView(b grade.Bucket) BucketView {
	v := BucketView{Lower: b.Lower, Label: b.Label, Color: b.Color, Range: b.Range()}
	if !b.Open() {
		u := b.Upper
		v.Upper = &u
	}
	return v
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) overview(c *gin.Context) {
	RespondOK(c, gin.H{
		"source":      s.source,
		"overview":    s.engine.Overview(),
		"diagnostics": s.engine.Diagnostics(),
	})
}

func (s *Server) boreholes(c *gin.Context) {
	RespondOK(c, gin.H{"boreholes": s.engine.Boreholes()})
}

func (s *Server) boreholeSummary(c *gin.Context) {
	cutoff, ok := queryCutoff(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"cutoff": cutoff, "summaries": nonNil(s.engine.BoreholeSummary(cutoff))})
}

func (s *Server) profile(c *gin.Context) {
	cutoff, ok := queryCutoff(c)
	if !ok {
		return
	}
	id := c.Param("id")
	entries, err := s.engine.BoreholeProfile(id, cutoff)
	if err != nil {
		var ube *report.UnknownBoreholeError
		if errors.As(err, &ube) {
			RespondError(c, http.StatusNotFound, CodeUnknownBorehole, err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "", err)
		return
	}
	RespondOK(c, gin.H{"borehole_id": id, "cutoff": cutoff, "entries": entries})
}

func (s *Server) localities(c *gin.Context) {
	cutoff, ok := queryCutoff(c)
	if !ok {
		return
	}
	order, err := aggregate.ParseOrder(c.Query("order"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	RespondOK(c, gin.H{"cutoff": cutoff, "order": order.String(), "summaries": nonNil(s.engine.LocalitySummaryOrdered(cutoff, order))})
}

func (s *Server) histogram(c *gin.Context) {
	width := s.binWidth
	if raw := strings.TrimSpace(c.Query("bin_width")); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid bin_width %q", raw))
			return
		}
		width = w
	}
	bins, err := s.engine.GradeHistogram(width)
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	RespondOK(c, gin.H{"bin_width": width, "bins": bins})
}

func (s *Server) buckets(c *gin.Context) {
	bs := s.engine.Buckets().Buckets()
	out := make([]BucketView, len(bs))
	for i, b := range bs {
		out[i] = bucketView(b)
	}
	RespondOK(c, gin.H{"buckets": out})
}

func (s *Server) classify(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("grade"))
	if raw == "" {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("grade is required"))
		return
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid grade %q", raw))
		return
	}
	b, err := s.engine.Buckets().Bucket(x)
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidGrade, err)
		return
	}
	RespondOK(c, gin.H{"grade": x, "bucket": bucketView(b)})
}

// queryCutoff reads the optional cutoff parameter, responding 400 when it is malformed.
func queryCutoff(c *gin.Context) (*float64, bool) {
	raw := strings.TrimSpace(c.Query("cutoff"))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid cutoff %q", raw))
		return nil, false
	}
	return &v, true
}

func nonNil(gs []aggregate.GroupSummary) []aggregate.GroupSummary {
	if gs == nil {
		return []aggregate.GroupSummary{}
	}
	return gs
}
