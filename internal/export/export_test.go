package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/storage"
)

func testBundle(t *testing.T, cutoff *float64) *Bundle {
	t.Helper()
	recs := []assay.Record{
		{BoreholeID: "PAF-01", Locality: "PAF", DepthFrom: 0, DepthTo: 1, DepthMid: 0.5, Grade: 12, Iron: 30, HasIron: true},
		{BoreholeID: "PAF-01", Locality: "PAF", DepthFrom: 1, DepthTo: 2, DepthMid: 1.5, Grade: 33, SampleID: "AM-2"},
		{BoreholeID: "SC-01", Locality: "SC", DepthFrom: 0, DepthTo: 1, DepthMid: 0.5, Grade: 3},
	}
	diag := assay.Diagnostics{Total: 4, Kept: 3, Rejected: 1, Reasons: map[string]int{assay.ReasonMissingGrade: 1}}
	e, err := report.New(recs, report.Options{Diagnostics: diag})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBundle("furos.csv", e, cutoff, 5)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	return b
}

func TestNewBundle(t *testing.T) {
	c := 10.0
	b := testBundle(t, &c)
	if b.RunID == "" || b.Source != "furos.csv" || len(b.Records) != 3 {
		t.Fatalf("bundle = %+v", b)
	}
	if len(b.Localities) != 1 || b.Localities[0].Key != "PAF" {
		t.Fatalf("cutoff should drop SC: %+v", b.Localities)
	}
	if b.Records[1].Bucket != "very_high" || b.Records[2].Color != "#00008B" {
		t.Fatalf("record buckets = %+v", b.Records)
	}
	if len(b.Histogram) != 7 {
		t.Fatalf("histogram bins = %d", len(b.Histogram))
	}
}

func TestJSONSave(t *testing.T) {
	b := testBundle(t, nil)
	data, err := EncodeJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "out", "run.json")
	if err := Save(context.Background(), dest, data, "application/json", storage.Config{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	var back struct {
		RunID   string `json:"run_id"`
		Records []struct {
			BoreholeID string `json:"borehole_id"`
			Bucket     string `json:"bucket"`
		} `json:"records"`
	}
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.RunID != b.RunID || len(back.Records) != 3 || back.Records[0].BoreholeID != "PAF-01" || back.Records[0].Bucket != "medium" {
		t.Fatalf("decoded = %+v", back)
	}
}

func TestEncodeXLSX(t *testing.T) {
	b := testBundle(t, nil)
	data, err := EncodeXLSX(b)
	if err != nil {
		t.Fatalf("EncodeXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := []string{SheetRecords, SheetLocalities, SheetBoreholes, SheetHistogram}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}
	rows, err := f.GetRows(SheetRecords)
	if err != nil || len(rows) != 4 || rows[1][0] != "PAF-01" {
		t.Fatalf("records sheet = %v, %v", rows, err)
	}
	locs, _ := f.GetRows(SheetLocalities)
	if len(locs) != 3 || locs[1][0] != "PAF" {
		t.Fatalf("localities sheet = %v", locs)
	}
	holes, _ := f.GetRows(SheetBoreholes)
	if len(holes) != 3 || holes[0][1] != "Locality" || holes[1][0] != "PAF-01" || holes[1][1] != "PAF" {
		t.Fatalf("boreholes sheet = %v", holes)
	}
}

func TestWriteSQLite(t *testing.T) {
	b := testBundle(t, nil)
	dsn := filepath.Join(t.TempDir(), "assays.db")
	ctx := context.Background()
	if err := WriteSQL(ctx, DriverSQLite, dsn, b); err != nil {
		t.Fatalf("WriteSQL: %v", err)
	}
	second := testBundle(t, nil)
	if err := WriteSQL(ctx, DriverSQLite, dsn, second); err != nil {
		t.Fatalf("second WriteSQL: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	count := func(query string, args ...any) int {
		var n int
		if err := db.QueryRow(query, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}
	if n := count(`SELECT COUNT(*) FROM assay_records WHERE run_id = ?`, b.RunID); n != 3 {
		t.Fatalf("records = %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM group_summaries WHERE run_id = ? AND group_by = 'locality'`, b.RunID); n != 2 {
		t.Fatalf("locality summaries = %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM group_summaries WHERE run_id = ? AND group_by = 'borehole' AND group_key = 'SC-01' AND locality = 'SC'`, b.RunID); n != 1 {
		t.Fatalf("borehole summary locality rows = %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM grade_histogram WHERE run_id = ?`, b.RunID); n != len(b.Histogram) {
		t.Fatalf("histogram rows = %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM export_runs`); n != 2 {
		t.Fatalf("runs = %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM assay_records WHERE run_id = ? AND iron_percent IS NULL`, b.RunID); n != 2 {
		t.Fatalf("null iron rows = %d", n)
	}
}

func TestWriteSQLUnknownDriver(t *testing.T) {
	if err := WriteSQL(context.Background(), "mysql", "x", testBundle(t, nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestRebind(t *testing.T) {
	if got := rebind(DriverPostgres, "VALUES(?,?)"); got != "VALUES($1,$2)" {
		t.Fatalf("got %q", got)
	}
	if got := rebind(DriverSQLite, "VALUES(?,?)"); got != "VALUES(?,?)" {
		t.Fatalf("got %q", got)
	}
}
