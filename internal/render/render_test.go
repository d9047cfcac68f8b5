package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/report"
)

func TestNonTTYIsPlain(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false)
	if r.Color() {
		t.Fatal("buffer is not a terminal")
	}
	out := r.Legend(grade.DefaultTable())
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected escape codes: %q", out)
	}
	for _, want := range []string{"0–5%", "[very_low]", "≥40%", "[extreme]"} {
		if !strings.Contains(out, want) {
			t.Errorf("legend missing %q:\n%s", want, out)
		}
	}
}

func TestProfileAndSummary(t *testing.T) {
	r := New(&bytes.Buffer{}, true)
	prof := r.Profile("PAF-01", []report.ProfileEntry{
		{DepthLabel: "0–1 m", Grade: 12.5, Bucket: "medium", Color: "#008000", Locality: "PAF"},
		{DepthLabel: "1–2 m", Grade: 4, Bucket: "very_low", Color: "#00008B", Locality: "PAF"},
	}, nil)
	if !strings.Contains(prof, "Borehole PAF-01") || !strings.Contains(prof, "12.50  [medium]") ||
		!strings.Contains(prof, "locality PAF, 2 samples, max 12.50%, min 4.00%") {
		t.Fatalf("profile:\n%s", prof)
	}
	c := 50.0
	if empty := r.Profile("PAF-01", nil, &c); !strings.Contains(empty, "no samples") || !strings.Contains(empty, "grade > 50%") {
		t.Fatalf("empty profile:\n%s", empty)
	}
	sum := r.Summary("Localities", []aggregate.GroupSummary{
		{Key: "PAF", Count: 2, Total: 3, Mean: 15, Min: 10, Max: 20, HasIron: true, MeanIron: 5, Ratio: 3},
	}, grade.DefaultTable())
	if !strings.Contains(sum, "2/3") || !strings.Contains(sum, "3.00") || !strings.Contains(sum, "[high]") {
		t.Fatalf("summary:\n%s", sum)
	}
	holes := r.Summary("Boreholes", []aggregate.GroupSummary{
		{Key: "PAF-01", Count: 1, Total: 1, Mean: 4, Min: 4, Max: 4, Localities: []string{"PAF"}},
	}, grade.DefaultTable())
	if !strings.Contains(holes, "PAF-01 (PAF)") {
		t.Fatalf("borehole summary:\n%s", holes)
	}
}

func TestHistogramBars(t *testing.T) {
	r := New(&bytes.Buffer{}, false)
	out := r.Histogram([]report.HistogramBin{
		{Label: "0–5", Count: 4},
		{Label: "5–10", Count: 2},
		{Label: "10–15", Count: 0},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if strings.Count(lines[1], "█") != barWidth || strings.Count(lines[2], "█") != barWidth/2 || strings.Count(lines[3], "█") != 0 {
		t.Fatalf("bars:\n%s", out)
	}
}
