package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/schema"
)

const furos = "Furo;Local;De;Até;MN (%);FE\n" +
	"PAF-01;Pará;0;1;12,5;40\n" +
	"PAF-01;Pará;1;2;31;\n" +
	"PAF-02;Pará;0;1;abc;10\n" +
	"SC-01;Serra;0;2;4,5;20\n"

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadCSVEndToEnd(t *testing.T) {
	src := writeFixture(t, "furos.csv", furos)
	ds, err := Load(context.Background(), Options{Source: src})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Name != "furos.csv" || len(ds.Records) != 3 || ds.Diagnostics.Rejected != 1 {
		t.Fatalf("dataset = %+v", ds)
	}
	if ds.Mapping.Columns[schema.DepthTo] != "Até" {
		t.Fatalf("mapping = %+v", ds.Mapping)
	}
	e, err := ds.Engine(grade.DefaultTable())
	if err != nil {
		t.Fatal(err)
	}
	// PAF-02 had every row rejected but is still a known borehole.
	prof, err := e.BoreholeProfile("PAF-02", nil)
	if err != nil || len(prof) != 0 {
		t.Fatalf("PAF-02 profile = %v, %v", prof, err)
	}
	var ube *report.UnknownBoreholeError
	if _, err := e.BoreholeProfile("XX-9", nil); !errors.As(err, &ube) {
		t.Fatalf("err = %v", err)
	}
	locs := e.LocalitySummary(nil)
	if len(locs) != 2 || locs[0].Key != "Pará" || locs[0].Max != 31 {
		t.Fatalf("localities = %+v", locs)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	src := writeFixture(t, "bad.csv", "Furo,Teor\nA,1\n")
	_, err := Load(context.Background(), Options{Source: src})
	var mce *schema.MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("err = %v", err)
	}
	if len(mce.Missing) != 4 {
		t.Fatalf("missing = %v", mce.Missing)
	}
}

func TestLoadDeriveLocalityPPM(t *testing.T) {
	src := writeFixture(t, "ppm.csv", "HOLE_ID,FROM,TO,MN\nPAF-01,0,1,125000\n")
	ds, err := Load(context.Background(), Options{
		Source: src,
		Schema: schema.Options{DeriveLocality: true},
		Assay:  assay.Options{DeriveLocality: true, Scale: 1e-4},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Locality != "PAF" {
		t.Fatalf("records = %+v", ds.Records)
	}
}

func TestLoadNoSource(t *testing.T) {
	if _, err := Load(context.Background(), Options{}); err == nil {
		t.Fatal("expected error")
	}
}
