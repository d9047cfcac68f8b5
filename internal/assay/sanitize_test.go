package assay

import (
	"math"
	"reflect"
	"testing"

	"github.com/KaramelBytes/assayreport/internal/schema"
)

func identity() schema.Mapping { return schema.Identity() }

func TestSanitizeKeepsValidAndCountsRejected(t *testing.T) {
	rows := []RawRow{
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": 0.0, "DEPTH_TO": 1.0, "GRADE_PERCENT": 12.0},
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": 1.0, "DEPTH_TO": 2.0, "GRADE_PERCENT": "abc"},
	}
	recs, diag := Sanitize(rows, identity(), Options{})
	if len(recs) != 1 || diag.Rejected != 1 {
		t.Fatalf("got %d clean / %d rejected, want 1 / 1", len(recs), diag.Rejected)
	}
	if recs[0].DepthMid != 0.5 {
		t.Fatalf("depth mid = %v, want 0.5", recs[0].DepthMid)
	}
	if diag.Reasons[ReasonInvalidGrade] != 1 {
		t.Fatalf("reasons = %v", diag.Reasons)
	}
}

func TestSanitizeRowRules(t *testing.T) {
	base := func(over map[string]any) RawRow {
		r := RawRow{"BOREHOLE_ID": "PAF-01", "LOCALITY": "PAF", "DEPTH_FROM": "1", "DEPTH_TO": "2", "GRADE_PERCENT": "10"}
		for k, v := range over {
			r[k] = v
		}
		return r
	}
	tests := []struct {
		name   string
		row    RawRow
		reason string
	}{
		{"missing borehole", base(map[string]any{"BOREHOLE_ID": "  "}), ReasonMissingBorehole},
		{"missing locality", base(map[string]any{"LOCALITY": nil}), ReasonMissingLocality},
		{"missing depth", base(map[string]any{"DEPTH_TO": ""}), ReasonMissingDepth},
		{"invalid depth", base(map[string]any{"DEPTH_FROM": "x"}), ReasonInvalidDepth},
		{"negative depth", base(map[string]any{"DEPTH_FROM": "-1"}), ReasonNegativeDepth},
		{"depth order", base(map[string]any{"DEPTH_FROM": "3"}), ReasonDepthOrder},
		{"missing grade", base(map[string]any{"GRADE_PERCENT": nil}), ReasonMissingGrade},
		{"nan grade", base(map[string]any{"GRADE_PERCENT": math.NaN()}), ReasonInvalidGrade},
		{"negative grade", base(map[string]any{"GRADE_PERCENT": "-0,5"}), ReasonNegativeGrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, diag := Sanitize([]RawRow{tt.row}, identity(), Options{})
			if len(recs) != 0 {
				t.Fatalf("expected row rejected, got %+v", recs)
			}
			if diag.Reasons[tt.reason] != 1 {
				t.Fatalf("reasons = %v, want %q", diag.Reasons, tt.reason)
			}
		})
	}
}

func TestSanitizeDecimalCommaAndPercent(t *testing.T) {
	rows := []RawRow{
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": "0,5", "DEPTH_TO": "1,5", "GRADE_PERCENT": "12,75%", "IRON_PERCENT": "3,5"},
	}
	recs, _ := Sanitize(rows, identity(), Options{})
	if len(recs) != 1 {
		t.Fatalf("expected 1 record")
	}
	r := recs[0]
	if r.DepthFrom != 0.5 || r.DepthTo != 1.5 || r.DepthMid != 1 {
		t.Fatalf("depths = %v %v %v", r.DepthFrom, r.DepthTo, r.DepthMid)
	}
	if r.Grade != 12.75 || !r.HasIron || r.Iron != 3.5 {
		t.Fatalf("grade/iron = %v %v %v", r.Grade, r.HasIron, r.Iron)
	}
}

func TestSanitizeOptionalFields(t *testing.T) {
	rows := []RawRow{
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": 0, "DEPTH_TO": 1, "GRADE_PERCENT": 150.0, "IRON_PERCENT": "n/a",
			"SAMPLE_ID": "AM-001", "X": "512300.5", "Y": "8765432", "Z": 812},
	}
	recs, diag := Sanitize(rows, identity(), Options{})
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, diag=%+v", diag)
	}
	r := recs[0]
	if r.HasIron || diag.IronDropped != 1 {
		t.Fatalf("iron should be dropped: %+v %+v", r, diag)
	}
	if !r.Suspect || diag.Suspect != 1 {
		t.Fatalf("grade > 100 should be suspect")
	}
	if !r.HasCoords || r.Z != 812 || r.SampleID != "AM-001" {
		t.Fatalf("optional fields = %+v", r)
	}
}

func TestSanitizeDeriveLocalityAndScale(t *testing.T) {
	m := schema.Mapping{Columns: map[schema.Field]string{
		schema.BoreholeID: "HOLE",
		schema.DepthFrom:  "FROM",
		schema.DepthTo:    "TO",
		schema.Grade:      "MN_PPM",
	}}
	rows := []RawRow{
		{"HOLE": "paf-01", "FROM": "0", "TO": "1", "MN_PPM": "125000"},
		{"HOLE": "17", "FROM": "0", "TO": "1", "MN_PPM": "1000"},
	}
	recs, diag := Sanitize(rows, m, Options{DeriveLocality: true, Scale: 1e-4})
	if len(recs) != 1 || diag.Reasons[ReasonMissingLocality] != 1 {
		t.Fatalf("recs=%+v diag=%+v", recs, diag)
	}
	if recs[0].Locality != "PAF" || math.Abs(recs[0].Grade-12.5) > 1e-9 {
		t.Fatalf("record = %+v", recs[0])
	}
	if !reflect.DeepEqual(diag.Boreholes, []string{"17", "paf-01"}) {
		t.Fatalf("boreholes = %v", diag.Boreholes)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	rows := []RawRow{
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": "0", "DEPTH_TO": "1", "GRADE_PERCENT": "12.0", "IRON_PERCENT": "4"},
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": "2", "DEPTH_TO": "1", "GRADE_PERCENT": "12.0"},
		{"BOREHOLE_ID": "B2", "LOCALITY": "L2", "DEPTH_FROM": "0", "DEPTH_TO": "2,5", "GRADE_PERCENT": "7,25", "X": 1, "Y": 2, "Z": 3},
	}
	once, _ := Sanitize(rows, identity(), Options{})
	twice, diag := Sanitize(RawRows(once), identity(), Options{})
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("sanitize not idempotent:\n once=%+v\ntwice=%+v", once, twice)
	}
	if diag.Rejected != 0 {
		t.Fatalf("clean data rejected: %+v", diag)
	}
}

func TestSanitizeIdempotentAfterScale(t *testing.T) {
	rows := []RawRow{
		{"BOREHOLE_ID": "B1", "LOCALITY": "L1", "DEPTH_FROM": "0", "DEPTH_TO": "1", "GRADE_PERCENT": "125000", "IRON_PERCENT": "40000"},
	}
	once, _ := Sanitize(rows, identity(), Options{Scale: 1e-4})
	if len(once) != 1 || math.Abs(once[0].Grade-12.5) > 1e-9 || math.Abs(once[0].Iron-4) > 1e-9 {
		t.Fatalf("scaled = %+v", once)
	}
	twice, _ := Sanitize(RawRows(once), identity(), Options{Scale: 1})
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass rescaled:\n once=%+v\ntwice=%+v", once, twice)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		dec  rune
		want float64
		ok   bool
	}{
		{"12.5", 0, 12.5, true},
		{"12,5", 0, 12.5, true},
		{"1.234,5", 0, 1234.5, true},
		{"1,234.5", 0, 1234.5, true},
		{"12,5", '.', 125, true},
		{" 7 %", 0, 7, true},
		{"1e-3", 0, 0.001, true},
		{"abc", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in, tt.dec)
		if ok != tt.ok || (ok && math.Abs(got-tt.want) > 1e-12) {
			t.Errorf("ParseNumber(%q, %q) = %v, %v; want %v, %v", tt.in, tt.dec, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocalityPrefix(t *testing.T) {
	for in, want := range map[string]string{"PAF-01": "PAF", "sc12": "SC", "12A": "", " Itá_3": "ITÁ"} {
		if got := LocalityPrefix(in); got != want {
			t.Errorf("LocalityPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
