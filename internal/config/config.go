package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/schema"
	"github.com/KaramelBytes/assayreport/internal/storage"
)

// Global configuration structure.
type Global struct {
	// Source workbook: local path, s3://bucket/key or gs://bucket/key.
	Source     string `mapstructure:"source" yaml:"source,omitempty"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name,omitempty"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`
	// Delimiter for delimited text; empty sniffs it, "tab" means '\t'.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
	// Decimal is "auto", "." or ",".
	Decimal string `mapstructure:"decimal" yaml:"decimal"`
	// GradeUnit is "percent" or "ppm".
	GradeUnit      string `mapstructure:"grade_unit" yaml:"grade_unit"`
	DeriveLocality bool   `mapstructure:"derive_locality" yaml:"derive_locality"`

	HistogramBinWidth float64             `mapstructure:"histogram_bin_width" yaml:"histogram_bin_width"`
	Buckets           []grade.Threshold   `mapstructure:"buckets" yaml:"buckets,omitempty"`
	Synonyms          map[string][]string `mapstructure:"synonyms" yaml:"synonyms,omitempty"`

	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	LogMode    string `mapstructure:"log_mode" yaml:"log_mode"`

	// Object storage
	S3Region    string `mapstructure:"s3_region" yaml:"s3_region,omitempty"`
	S3Endpoint  string `mapstructure:"s3_endpoint" yaml:"s3_endpoint,omitempty"`
	S3AccessKey string `mapstructure:"s3_access_key" yaml:"s3_access_key,omitempty"`
	S3SecretKey string `mapstructure:"s3_secret_key" yaml:"s3_secret_key,omitempty"`
}

// Dir returns ~/.assayreport.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".assayreport"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.assayreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ASSAYREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", "auto")
	v.SetDefault("grade_unit", "percent")
	v.SetDefault("derive_locality", false)
	v.SetDefault("histogram_bin_width", 5.0)
	v.SetDefault("server_addr", ":10000")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// BucketTable builds the grade table, falling back to the default legend.
func (c *Global) BucketTable() (grade.Table, error) {
	if len(c.Buckets) == 0 {
		return grade.DefaultTable(), nil
	}
	t, err := grade.NewTable(c.Buckets)
	if err != nil {
		return grade.Table{}, fmt.Errorf("config buckets: %w", err)
	}
	return t, nil
}

// SynonymTable merges configured variants into the default synonym table.
func (c *Global) SynonymTable() (schema.Synonyms, error) {
	syn := schema.DefaultSynonyms()
	known := map[schema.Field]bool{}
	for _, f := range schema.Fields() {
		known[f] = true
	}
	for k, variants := range c.Synonyms {
		// viper lowercases map keys
		f := schema.Field(strings.ToUpper(strings.TrimSpace(k)))
		if !known[f] {
			return nil, fmt.Errorf("config synonyms: unknown field %q", k)
		}
		syn[f] = append(syn[f], variants...)
	}
	if err := syn.Validate(); err != nil {
		return nil, fmt.Errorf("config synonyms: %w", err)
	}
	return syn, nil
}

// DecimalRune returns 0 for auto-detection, '.' or ','.
func (c *Global) DecimalRune() (rune, error) {
	switch strings.ToLower(strings.TrimSpace(c.Decimal)) {
	case "", "auto":
		return 0, nil
	case ".", "dot", "point":
		return '.', nil
	case ",", "comma":
		return ',', nil
	default:
		return 0, fmt.Errorf("invalid decimal %q (use auto, . or ,)", c.Decimal)
	}
}

// DelimiterRune returns 0 to sniff, or the configured field separator.
func (c *Global) DelimiterRune() rune {
	switch d := c.Delimiter; strings.ToLower(d) {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	case "semicolon":
		return ';'
	case "comma":
		return ','
	default:
		return []rune(d)[0]
	}
}

// GradeScale returns the factor converting source grades to percent.
func (c *Global) GradeScale() (float64, error) {
	switch strings.ToLower(strings.TrimSpace(c.GradeUnit)) {
	case "", "percent", "%", "pct":
		return 1, nil
	case "ppm":
		return 1e-4, nil
	default:
		return 0, fmt.Errorf("invalid grade_unit %q (use percent or ppm)", c.GradeUnit)
	}
}

// StorageConfig returns the object storage settings.
func (c *Global) StorageConfig() storage.Config {
	return storage.Config{
		S3Region:    c.S3Region,
		S3Endpoint:  c.S3Endpoint,
		S3AccessKey: c.S3AccessKey,
		S3SecretKey: c.S3SecretKey,
	}
}
