package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/render"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

var (
	locCutoff float64
	locOrder  string
	locFormat string
)

var localitiesCmd = &cobra.Command{
	Use:   "localities",
	Short: "Summarize grades per locality, highest maximum grade first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(locFormat, "text", "md", "json"); err != nil {
			return err
		}
		order, err := aggregate.ParseOrder(locOrder)
		if err != nil {
			return err
		}
		_, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		cutoff := cutoffFlag(cmd, locCutoff)
		gs := e.LocalitySummaryOrdered(cutoff, order)
		out := cmd.OutOrStdout()
		switch locFormat {
		case "json":
			b, err := utils.PrettyJSON(map[string]any{"cutoff": cutoff, "order": order.String(), "summaries": gs})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "md":
			fmt.Fprint(out, report.SummaryMarkdown("LOCALITY SUMMARY", gs, cutoff))
		default:
			fmt.Fprint(out, render.New(out, noColor).Summary("Localities", gs, e.Buckets()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localitiesCmd)
	localitiesCmd.Flags().Float64Var(&locCutoff, "cutoff", 0, "only count samples with grade strictly above this value")
	localitiesCmd.Flags().StringVar(&locOrder, "order", "max", "ordering: max (highest max grade first) or key")
	localitiesCmd.Flags().StringVar(&locFormat, "format", "text", "output format: text, md or json")
}
