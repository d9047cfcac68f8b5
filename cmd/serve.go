package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report views of the source over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		addr := cfg.ServerAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(e, server.Options{
			Source:   cfg.Source,
			BinWidth: cfg.HistogramBinWidth,
			Log:      log,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %d samples on %s\n", e.Overview().Samples, addr)
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config server_addr)")
}
