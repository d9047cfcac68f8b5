package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assayreport/internal/export"
	"github.com/KaramelBytes/assayreport/internal/logger"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

var (
	expFormat   string
	expOutput   string
	expDSN      string
	expCutoff   float64
	expBinWidth float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records, summaries and histogram to JSON, XLSX, SQLite or Postgres",
	Long: `Export writes every report view of the source in one run.

JSON and XLSX go to --output, which may be a local path, s3://bucket/key or gs://bucket/key.
SQLite and Postgres append the run to the database given by --dsn.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(expFormat, "json", "xlsx", "sqlite", "postgres"); err != nil {
			return err
		}
		if (expFormat == "sqlite" || expFormat == "postgres") && expDSN == "" {
			return fmt.Errorf("--dsn is required for --format %s", expFormat)
		}
		ds, e, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		width := cfg.HistogramBinWidth
		if cmd.Flags().Changed("bin-width") {
			width = expBinWidth
		}
		b, err := export.NewBundle(cfg.Source, e, cutoffFlag(cmd, expCutoff), width)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		switch expFormat {
		case "sqlite", "postgres":
			driver := export.DriverSQLite
			if expFormat == "postgres" {
				driver = export.DriverPostgres
			}
			if err := export.WriteSQL(ctx, driver, expDSN, b); err != nil {
				return err
			}
			log.Info("export stored", "run_id", b.RunID, "driver", driver, "dsn", logger.RedactDSN(expDSN))
			fmt.Fprintf(out, "✓ Stored run %s (%d records) in %s\n", b.RunID, len(b.Records), expFormat)
			return nil
		}

		var (
			data []byte
			ct   string
		)
		if expFormat == "xlsx" {
			data, err = export.EncodeXLSX(b)
			ct = export.XLSXContentType
		} else {
			data, err = export.EncodeJSON(b)
			ct = "application/json"
		}
		if err != nil {
			return err
		}
		dest := expOutput
		if dest == "" {
			dest = utils.ReplaceExt(ds.Name, ".report."+expFormat)
		}
		if err := export.Save(ctx, dest, data, ct, cfg.StorageConfig()); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote %s export to %s\n", expFormat, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expFormat, "format", "json", "export format: json, xlsx, sqlite or postgres")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path or object URI (default <source>.report.<format>)")
	exportCmd.Flags().StringVar(&expDSN, "dsn", "", "database DSN for sqlite or postgres")
	exportCmd.Flags().Float64Var(&expCutoff, "cutoff", 0, "apply a grade cutoff to the summaries")
	exportCmd.Flags().Float64Var(&expBinWidth, "bin-width", 5, "histogram bin width (overrides config)")
}
