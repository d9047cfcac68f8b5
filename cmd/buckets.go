package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/render"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets [grade...]",
	Short: "Show the grade bucket legend, or classify the given grades",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		t, err := cfg.BucketTable()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		r := render.New(out, noColor)
		if len(args) == 0 {
			fmt.Fprint(out, r.Legend(t))
			return nil
		}
		for _, a := range args {
			x, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q", a)
			}
			b, err := t.Bucket(x)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", a, b.Label, b.Color, b.Range())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}
