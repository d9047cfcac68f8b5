package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/render"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

var (
	profCutoff float64
	profFormat string
)

var profileCmd = &cobra.Command{
	Use:   "profile <borehole-id>",
	Short: "Show the grade profile of one borehole, ordered by depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(profFormat, "text", "md", "json"); err != nil {
			return err
		}
		_, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		id := args[0]
		cutoff := cutoffFlag(cmd, profCutoff)
		entries, err := e.BoreholeProfile(id, cutoff)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch profFormat {
		case "json":
			b, err := utils.PrettyJSON(map[string]any{"borehole_id": id, "cutoff": cutoff, "entries": entries})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "md":
			fmt.Fprint(out, report.ProfileMarkdown(id, entries, cutoff))
		default:
			fmt.Fprint(out, render.New(out, noColor).Profile(id, entries, cutoff))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().Float64Var(&profCutoff, "cutoff", 0, "only show samples with grade strictly above this value")
	profileCmd.Flags().StringVar(&profFormat, "format", "text", "output format: text, md or json")
}
