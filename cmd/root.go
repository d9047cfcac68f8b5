package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/assayreport/internal/config"
	"github.com/KaramelBytes/assayreport/internal/dataset"
	"github.com/KaramelBytes/assayreport/internal/logger"
	"github.com/KaramelBytes/assayreport/internal/report"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	noColor  bool
	flagSrc  string
	flagSht  string
	flagUnit string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "assayreport",
	Short: "Assayreport: grade reports from borehole assay workbooks",
	Long: `Assayreport reads a borehole assay workbook (XLSX, CSV or TSV, local or in S3/GCS),
normalizes its headers, sanitizes the samples and reports manganese grades per borehole,
per locality and as a histogram, on the terminal, over HTTP or as an export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.assayreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().StringVarP(&flagSrc, "source", "s", "", "source workbook: path, s3://bucket/key or gs://bucket/key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSht, "sheet", "", "XLSX sheet name or 1-based index (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagUnit, "grade-unit", "", "unit of the grade column: percent or ppm (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("source") && flagSrc != "" {
		cfg.Source = flagSrc
	}
	if f.Changed("sheet") && flagSht != "" {
		applySheet(cfg, flagSht)
	}
	if f.Changed("grade-unit") && flagUnit != "" {
		cfg.GradeUnit = flagUnit
	}

	l, err := logger.New(cfg.LogMode, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; logging disabled\n", err)
		l = logger.Nop()
	}
	log = l
}

// applySheet treats a numeric selector as a 1-based index and anything else as a sheet name.
func applySheet(c *cfgpkg.Global, sel string) {
	if idx, err := strconv.Atoi(strings.TrimSpace(sel)); err == nil {
		c.SheetIndex = idx
		c.SheetName = ""
		return
	}
	c.SheetName = sel
}

// loadEngine loads the configured source and builds a report engine over it.
func loadEngine(cmd *cobra.Command) (*dataset.Dataset, *report.Engine, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}
	opt, err := dataset.OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	opt.Log = log
	ds, err := dataset.Load(cmd.Context(), opt)
	if err != nil {
		return nil, nil, err
	}
	buckets, err := cfg.BucketTable()
	if err != nil {
		return nil, nil, err
	}
	e, err := ds.Engine(buckets)
	if err != nil {
		return nil, nil, err
	}
	return ds, e, nil
}

// cutoffFlag returns the --cutoff value, or nil when the flag was not given.
func cutoffFlag(cmd *cobra.Command, v float64) *float64 {
	if !cmd.Flags().Changed("cutoff") {
		return nil
	}
	return &v
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported --format: %s (use %s)", format, strings.Join(allowed, ", "))
}
