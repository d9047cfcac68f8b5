package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/assay"
)

// OverviewMarkdown renders the dataset summary and sanitize notes.
func OverviewMarkdown(name string, ov Overview, d assay.Diagnostics) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Samples: %d (of %d rows)\n", ov.Samples, d.Total))
	b.WriteString(fmt.Sprintf("Boreholes: %d\n", ov.Boreholes))
	b.WriteString(fmt.Sprintf("Localities: %d\n", ov.Localities))
	if ov.Samples > 0 {
		b.WriteString(fmt.Sprintf("Grade: mean %.4g, min %.4g, max %.4g\n", ov.MeanGrade, ov.MinGrade, ov.MaxGrade))
	}
	writeNotes(&b, d)
	return b.String()
}

func writeNotes(b *strings.Builder, d assay.Diagnostics) {
	if d.Rejected == 0 && d.Suspect == 0 && d.IronDropped == 0 {
		return
	}
	b.WriteString("\n[NOTES]\n")
	if d.Rejected > 0 {
		b.WriteString(fmt.Sprintf("- %d rows rejected\n", d.Rejected))
		reasons := make([]string, 0, len(d.Reasons))
		for k := range d.Reasons {
			reasons = append(reasons, k)
		}
		sort.Strings(reasons)
		for _, k := range reasons {
			b.WriteString(fmt.Sprintf("  • %s: %d\n", k, d.Reasons[k]))
		}
	}
	if d.Suspect > 0 {
		b.WriteString(fmt.Sprintf("- %d samples above 100%% flagged suspect\n", d.Suspect))
	}
	if d.IronDropped > 0 {
		b.WriteString(fmt.Sprintf("- %d unparseable iron values ignored\n", d.IronDropped))
	}
}

// ProfileMarkdown renders a borehole profile.
func ProfileMarkdown(id string, entries []ProfileEntry, cutoff *float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[BOREHOLE PROFILE] %s\n", id))
	if cutoff != nil {
		b.WriteString(fmt.Sprintf("Cutoff: grade > %s%%\n", fmtNum(*cutoff)))
	}
	if len(entries) == 0 {
		b.WriteString("No samples.\n")
		return b.String()
	}
	st := StatsOf(entries)
	b.WriteString(fmt.Sprintf("Locality: %s\nSamples: %d\nMax grade: %.2f%%\nMin grade: %.2f%%\n\n", st.Locality, st.Samples, st.Max, st.Min))
	b.WriteString("| Depth | Grade (%) | Bucket | Sample |\n|---|---|---|---|\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s |\n", e.DepthLabel, e.Grade, e.Bucket, e.SampleID))
	}
	return b.String()
}

// SummaryMarkdown renders group summaries under the given title, e.g. "LOCALITY SUMMARY".
func SummaryMarkdown(title string, gs []aggregate.GroupSummary, cutoff *float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]\n", title))
	if cutoff != nil {
		b.WriteString(fmt.Sprintf("Cutoff: grade > %s%%\n", fmtNum(*cutoff)))
	}
	if len(gs) == 0 {
		b.WriteString("No groups.\n")
		return b.String()
	}
	b.WriteString("| Key | Samples | Mean | Min | Max | Fe mean | Mn/Fe | Boreholes |\n|---|---|---|---|---|---|---|---|\n")
	for _, g := range gs {
		fe, ratio := "-", "-"
		if g.HasIron {
			fe = fmt.Sprintf("%.2f", g.MeanIron)
			ratio = fmt.Sprintf("%.2f", g.Ratio)
		}
		b.WriteString(fmt.Sprintf("| %s | %d/%d | %.2f | %.2f | %.2f | %s | %s | %d |\n",
			g.Key, g.Count, g.Total, g.Mean, g.Min, g.Max, fe, ratio, g.Boreholes))
	}
	return b.String()
}

// BoreholeSummaryMarkdown lists borehole summaries under their locality, keeping the given order within each.
func BoreholeSummaryMarkdown(gs []aggregate.GroupSummary, cutoff *float64) string {
	var b strings.Builder
	b.WriteString("[BOREHOLES BY LOCALITY]\n")
	if cutoff != nil {
		b.WriteString(fmt.Sprintf("Cutoff: grade > %s%%\n", fmtNum(*cutoff)))
	}
	if len(gs) == 0 {
		b.WriteString("No groups.\n")
		return b.String()
	}
	var order []string
	byLoc := map[string][]aggregate.GroupSummary{}
	for _, g := range gs {
		loc := g.Locality()
		if _, ok := byLoc[loc]; !ok {
			order = append(order, loc)
		}
		byLoc[loc] = append(byLoc[loc], g)
	}
	sort.Strings(order)
	for _, loc := range order {
		b.WriteString(fmt.Sprintf("\nLocality %s\n", loc))
		for _, g := range byLoc[loc] {
			b.WriteString(fmt.Sprintf("- %s: max %.2f%%, mean %.2f%%, %d samples\n", g.Key, g.Max, g.Mean, g.Count))
		}
	}
	return b.String()
}

// HistogramMarkdown renders histogram bins.
func HistogramMarkdown(bins []HistogramBin) string {
	var b strings.Builder
	b.WriteString("[GRADE HISTOGRAM]\n")
	if len(bins) == 0 {
		b.WriteString("No samples.\n")
		return b.String()
	}
	total := 0
	for _, h := range bins {
		total += h.Count
	}
	for _, h := range bins {
		pct := 0.0
		if total > 0 {
			pct = float64(h.Count) * 100 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s%%: %d (%.1f%%) %s\n", h.Label, h.Count, pct, h.Bucket))
	}
	return b.String()
}
