package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/render"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

var (
	bhSummary bool
	bhCutoff  float64
	bhFormat  string
)

var boreholesCmd = &cobra.Command{
	Use:   "boreholes",
	Short: "List borehole ids, or summarize grades per borehole with --summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(bhFormat, "text", "md", "json"); err != nil {
			return err
		}
		_, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !bhSummary {
			ids := e.Boreholes()
			if bhFormat == "json" {
				b, err := utils.PrettyJSON(map[string]any{"boreholes": ids})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			for _, id := range ids {
				fmt.Fprintf(out, "- %s\n", id)
			}
			return nil
		}
		cutoff := cutoffFlag(cmd, bhCutoff)
		gs := e.BoreholeSummary(cutoff)
		switch bhFormat {
		case "json":
			b, err := utils.PrettyJSON(map[string]any{"cutoff": cutoff, "summaries": gs})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "md":
			fmt.Fprint(out, report.SummaryMarkdown("BOREHOLE SUMMARY", gs, cutoff))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.BoreholeSummaryMarkdown(gs, cutoff))
		default:
			fmt.Fprint(out, render.New(out, noColor).Summary("Boreholes", gs, e.Buckets()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boreholesCmd)
	boreholesCmd.Flags().BoolVar(&bhSummary, "summary", false, "summarize grades per borehole")
	boreholesCmd.Flags().Float64Var(&bhCutoff, "cutoff", 0, "only count samples with grade strictly above this value")
	boreholesCmd.Flags().StringVar(&bhFormat, "format", "text", "output format: text, md or json")
}
