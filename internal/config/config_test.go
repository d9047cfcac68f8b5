package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/assayreport/internal/schema"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HistogramBinWidth != 5 || c.ServerAddr != ":10000" || c.GradeUnit != "percent" || c.SheetIndex != 1 {
		t.Fatalf("defaults = %+v", c)
	}
	tbl, err := c.BucketTable()
	if err != nil || tbl.Len() != 7 {
		t.Fatalf("default buckets: %v %v", tbl.Len(), err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `source: s3://assays/furos.xlsx
grade_unit: ppm
decimal: ","
buckets:
  - {lower: 0, label: waste, color: "#999999"}
  - {lower: 12, label: ore, color: "#FF0000"}
synonyms:
  GRADE_PERCENT: [MN_PPM]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSAYREPORT_SERVER_ADDR", ":8088")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Source != "s3://assays/furos.xlsx" || c.ServerAddr != ":8088" {
		t.Fatalf("config = %+v", c)
	}
	if s, err := c.GradeScale(); err != nil || s != 1e-4 {
		t.Fatalf("scale = %v %v", s, err)
	}
	if d, err := c.DecimalRune(); err != nil || d != ',' {
		t.Fatalf("decimal = %q %v", d, err)
	}
	tbl, err := c.BucketTable()
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := tbl.Classify(12); l != "ore" {
		t.Fatalf("classify 12 = %q", l)
	}
	syn, err := c.SynonymTable()
	if err != nil {
		t.Fatal(err)
	}
	m, err := schema.Normalize([]string{"FURO", "LOCAL", "DE", "ATE", "MN_PPM"}, syn, schema.Options{})
	if err != nil || m.Columns[schema.Grade] != "MN_PPM" {
		t.Fatalf("mapping = %+v %v", m, err)
	}
}

func TestInvalidValues(t *testing.T) {
	c := &Global{Decimal: "x", GradeUnit: "g/t", Synonyms: map[string][]string{"depth": {"D"}}}
	if _, err := c.DecimalRune(); err == nil {
		t.Error("expected decimal error")
	}
	if _, err := c.GradeScale(); err == nil {
		t.Error("expected grade_unit error")
	}
	if _, err := c.SynonymTable(); err == nil {
		t.Error("expected unknown field error")
	}
	c.Buckets = nil
	c.Synonyms = map[string][]string{"locality": {"FURO"}}
	if _, err := c.SynonymTable(); err == nil {
		t.Error("expected ambiguous variant error")
	}
}

func TestDelimiterRune(t *testing.T) {
	for in, want := range map[string]rune{"": 0, "tab": '\t', ";": ';', "semicolon": ';', "|": '|'} {
		if got := (&Global{Delimiter: in}).DelimiterRune(); got != want {
			t.Errorf("DelimiterRune(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	in := &Global{Source: "a.csv", GradeUnit: "percent", Decimal: "auto", HistogramBinWidth: 2.5, ServerAddr: ":1", LogMode: "prod", SheetIndex: 1}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Source != "a.csv" || out.HistogramBinWidth != 2.5 || out.LogMode != "prod" {
		t.Fatalf("round trip = %+v", out)
	}
}
