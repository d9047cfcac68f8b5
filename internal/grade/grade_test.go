package grade

import (
	"errors"
	"math"
	"testing"
)

func TestClassifyBoundaries(t *testing.T) {
	tbl := DefaultTable()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "very_low"},
		{4.9, "very_low"},
		{5.0, "low"},
		{9.999, "low"},
		{10, "medium"},
		{15, "medium_high"},
		{20, "high"},
		{29.5, "high"},
		{30, "very_high"},
		{39.999, "very_high"},
		{40.0, "extreme"},
		{250, "extreme"},
	}
	for _, tt := range tests {
		got, err := tbl.Classify(tt.in)
		if err != nil {
			t.Fatalf("Classify(%v) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyInvalid(t *testing.T) {
	tbl := DefaultTable()
	for _, x := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := tbl.Classify(x)
		var ige *InvalidGradeError
		if !errors.As(err, &ige) {
			t.Errorf("Classify(%v) err = %v, want InvalidGradeError", x, err)
		}
	}
}

func TestTableContiguous(t *testing.T) {
	bs := DefaultTable().Buckets()
	if bs[0].Lower != 0 {
		t.Fatalf("first lower = %v", bs[0].Lower)
	}
	for i := 1; i < len(bs); i++ {
		if bs[i].Lower != bs[i-1].Upper {
			t.Fatalf("gap between %q and %q", bs[i-1].Label, bs[i].Label)
		}
	}
	if !bs[len(bs)-1].Open() {
		t.Fatalf("last bucket must be unbounded")
	}
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name string
		ths  []Threshold
	}{
		{"empty", nil},
		{"not from zero", []Threshold{{Lower: 1, Label: "a"}}},
		{"not increasing", []Threshold{{Lower: 0, Label: "a"}, {Lower: 5, Label: "b"}, {Lower: 5, Label: "c"}}},
		{"empty label", []Threshold{{Lower: 0, Label: ""}}},
		{"duplicate label", []Threshold{{Lower: 0, Label: "a"}, {Lower: 1, Label: "a"}}},
		{"nan", []Threshold{{Lower: 0, Label: "a"}, {Lower: math.NaN(), Label: "b"}}},
	}
	for _, tt := range tests {
		if _, err := NewTable(tt.ths); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestCustomTableAndLegend(t *testing.T) {
	tbl, err := NewTable([]Threshold{{Lower: 0, Label: "waste"}, {Lower: 12.5, Label: "ore"}})
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := tbl.Classify(12.49); l != "waste" {
		t.Fatalf("12.49 -> %q", l)
	}
	if l, _ := tbl.Classify(12.5); l != "ore" {
		t.Fatalf("12.5 -> %q", l)
	}
	legend := tbl.Legend()
	if len(legend) != 2 || legend[0] != "0–12.5%" || legend[1] != "≥12.5%" {
		t.Fatalf("legend = %v", legend)
	}
	back, err := NewTable(tbl.Thresholds())
	if err != nil || back.Len() != 2 {
		t.Fatalf("round trip: %v %v", back, err)
	}
}
