package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/render"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

var (
	histWidth  float64
	histFormat string
)

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Show the grade distribution in fixed-width bins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(histFormat, "text", "md", "json"); err != nil {
			return err
		}
		_, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		width := cfg.HistogramBinWidth
		if cmd.Flags().Changed("bin-width") {
			width = histWidth
		}
		bins, err := e.GradeHistogram(width)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch histFormat {
		case "json":
			b, err := utils.PrettyJSON(map[string]any{"bin_width": width, "bins": bins})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "md":
			fmt.Fprint(out, report.HistogramMarkdown(bins))
		default:
			fmt.Fprint(out, render.New(out, noColor).Histogram(bins))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(histogramCmd)
	histogramCmd.Flags().Float64Var(&histWidth, "bin-width", 5, "bin width in grade percent (overrides config)")
	histogramCmd.Flags().StringVar(&histFormat, "format", "text", "output format: text, md or json")
}
