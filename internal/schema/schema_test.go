package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Localidade ", "LOCALIDADE"},
		{"Depth From", "DEPTH_FROM"},
		{"depth.to", "DEPTH_TO"},
		{"Prof.  Até", "PROF_ATE"},
		{"Mn (%)", "MN_(%)"},
		{"Furo ", "FURO"},
		{"Ção", "CAO"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Canonicalize(tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeResolvesSynonyms(t *testing.T) {
	headers := []string{"Amostra", "FURO", "Local", "DEPTH_FROM", "Depth To", "MN", "FE", "Comentário"}
	m, err := Normalize(headers, DefaultSynonyms(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := map[Field]string{
		BoreholeID: "FURO",
		Locality:   "Local",
		DepthFrom:  "DEPTH_FROM",
		DepthTo:    "Depth To",
		Grade:      "MN",
		Iron:       "FE",
		SampleID:   "Amostra",
	}
	if !reflect.DeepEqual(m.Columns, want) {
		t.Fatalf("columns = %#v, want %#v", m.Columns, want)
	}
	if len(m.Duplicates) != 0 {
		t.Fatalf("unexpected duplicates: %v", m.Duplicates)
	}
}

func TestNormalizeListsEveryMissingField(t *testing.T) {
	_, err := Normalize([]string{"FURO", "MN"}, nil, Options{})
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	want := []Field{Locality, DepthFrom, DepthTo}
	if !reflect.DeepEqual(mce.Missing, want) {
		t.Fatalf("missing = %v, want %v", mce.Missing, want)
	}
	if got := mce.Error(); got != "missing required columns: LOCALITY, DEPTH_FROM, DEPTH_TO" {
		t.Fatalf("message = %q", got)
	}
}

func TestNormalizeDeriveLocalityRelaxesRequirement(t *testing.T) {
	headers := []string{"HOLE_ID", "FROM", "TO", "MN_%"}
	if _, err := Normalize(headers, nil, Options{}); err == nil {
		t.Fatalf("expected missing LOCALITY without derivation")
	}
	m, err := Normalize(headers, nil, Options{DeriveLocality: true})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if m.Has(Locality) {
		t.Fatalf("locality should stay unmapped")
	}
}

func TestNormalizeFirstHeaderWins(t *testing.T) {
	headers := []string{"FURO", "LOCAL", "FROM", "TO", "MN", "Mn %"}
	m, err := Normalize(headers, nil, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if h, _ := m.Header(Grade); h != "MN" {
		t.Fatalf("grade header = %q, want MN", h)
	}
	if got := m.Duplicates[Grade]; len(got) != 1 || got[0] != "Mn %" {
		t.Fatalf("duplicates = %v", got)
	}
}

func TestSynonymsValidate(t *testing.T) {
	if err := DefaultSynonyms().Validate(); err != nil {
		t.Fatalf("default synonyms invalid: %v", err)
	}
	bad := Synonyms{
		BoreholeID: {"FURO"},
		Locality:   {"furo"},
	}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestCustomSynonymTable(t *testing.T) {
	syn := Synonyms{
		BoreholeID: {"DDH"},
		Locality:   {"TARGET"},
		DepthFrom:  {"INICIO"},
		DepthTo:    {"FIM"},
		Grade:      {"MN_PPM_PCT"},
	}
	m, err := Normalize([]string{"ddh", "target", "início", "fim", "Mn ppm pct"}, syn, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if h, _ := m.Header(DepthFrom); h != "início" {
		t.Fatalf("depth_from header = %q", h)
	}
	if h, _ := m.Header(Grade); h != "Mn ppm pct" {
		t.Fatalf("grade header = %q", h)
	}
}
