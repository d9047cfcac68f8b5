package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the source headers and rows and print a dataset summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "[COLUMNS]")
		for _, f := range schema.Fields() {
			if h, ok := ds.Mapping.Header(f); ok {
				fmt.Fprintf(out, "- %s ← %s\n", f, h)
			}
		}
		for _, f := range schema.Fields() {
			if dups := ds.Mapping.Duplicates[f]; len(dups) > 0 {
				fmt.Fprintf(out, "⚠ Warning: %s also matched %v (ignored)\n", f, dups)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, report.OverviewMarkdown(ds.Name, e.Overview(), ds.Diagnostics))
		fmt.Fprintf(out, "✓ %s: %d of %d rows usable\n", ds.Name, ds.Diagnostics.Kept, ds.Diagnostics.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
