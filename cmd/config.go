package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/assayreport/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set assayreport configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "source: %s\n", cfg.Source)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "decimal: %s\n", cfg.Decimal)
		fmt.Fprintf(out, "grade_unit: %s\n", cfg.GradeUnit)
		fmt.Fprintf(out, "derive_locality: %t\n", cfg.DeriveLocality)
		fmt.Fprintf(out, "histogram_bin_width: %g\n", cfg.HistogramBinWidth)
		fmt.Fprintf(out, "server_addr: %s\n", cfg.ServerAddr)
		fmt.Fprintf(out, "log_mode: %s\n", cfg.LogMode)
		if cfg.S3Region != "" {
			fmt.Fprintf(out, "s3_region: %s\n", cfg.S3Region)
		}
		if cfg.S3Endpoint != "" {
			fmt.Fprintf(out, "s3_endpoint: %s\n", cfg.S3Endpoint)
		}
		if cfg.S3AccessKey != "" {
			fmt.Fprintf(out, "s3_access_key: %s\n", mask(cfg.S3AccessKey))
		}
		if cfg.S3SecretKey != "" {
			fmt.Fprintf(out, "s3_secret_key: %s\n", mask(cfg.S3SecretKey))
		}
		if len(cfg.Buckets) > 0 {
			fmt.Fprintf(out, "buckets: %d custom thresholds\n", len(cfg.Buckets))
		}
		if len(cfg.Synonyms) > 0 {
			fmt.Fprintf(out, "synonyms: %d custom fields\n", len(cfg.Synonyms))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "source":
			cfg.Source = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid sheet_index: %s (1-based)", val)
			}
			cfg.SheetIndex = i
		case "delimiter":
			cfg.Delimiter = val
		case "decimal":
			prev := cfg.Decimal
			cfg.Decimal = val
			if _, err := cfg.DecimalRune(); err != nil {
				cfg.Decimal = prev
				return err
			}
		case "grade_unit":
			prev := cfg.GradeUnit
			cfg.GradeUnit = val
			if _, err := cfg.GradeScale(); err != nil {
				cfg.GradeUnit = prev
				return err
			}
		case "derive_locality":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for derive_locality: %v", val)
			}
			cfg.DeriveLocality = b
		case "histogram_bin_width":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid histogram_bin_width: %s (must be > 0)", val)
			}
			cfg.HistogramBinWidth = f
		case "server_addr":
			cfg.ServerAddr = val
		case "log_mode":
			switch val {
			case "dev", "prod", "nop":
				cfg.LogMode = val
			default:
				return fmt.Errorf("invalid log_mode: %s (use dev, prod or nop)", val)
			}
		case "s3_region":
			cfg.S3Region = val
		case "s3_endpoint":
			cfg.S3Endpoint = val
		case "s3_access_key":
			cfg.S3AccessKey = val
		case "s3_secret_key":
			cfg.S3SecretKey = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
