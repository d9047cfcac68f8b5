// Package render formats report views as terminal tables with bucket colour swatches.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/report"
)

const barWidth = 40

// Renderer writes coloured output when the destination is a terminal.
type Renderer struct {
	color bool
	lg    *lipgloss.Renderer
	head  lipgloss.Style
	muted lipgloss.Style
}

// New returns a Renderer for w. Colour is off when noColor is set or w is not a TTY.
func New(w io.Writer, noColor bool) *Renderer {
	color := !noColor
	if f, ok := w.(*os.File); ok {
		color = color && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	} else {
		color = false
	}
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		color: color,
		lg:    lg,
		head:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		muted: lg.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Color reports whether output is colourised.
func (r *Renderer) Color() bool { return r.color }

// Swatch renders a colour block for a bucket colour, or the label in brackets without colour.
func (r *Renderer) Swatch(hex, label string) string {
	if !r.color || hex == "" {
		return "[" + label + "]"
	}
	return r.lg.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + label
}

func (r *Renderer) title(s string) string {
	if !r.color {
		return s
	}
	return r.head.Render(s)
}

func (r *Renderer) note(s string) string {
	if !r.color {
		return s
	}
	return r.muted.Render(s)
}

// Legend lists the buckets of a grade table.
func (r *Renderer) Legend(t grade.Table) string {
	var b strings.Builder
	b.WriteString(r.title("Grade buckets") + "\n")
	for _, bk := range t.Buckets() {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", bk.Range(), r.Swatch(bk.Color, bk.Label)))
	}
	return b.String()
}

// Profile renders one borehole profile.
func (r *Renderer) Profile(id string, entries []report.ProfileEntry, cutoff *float64) string {
	var b strings.Builder
	head := "Borehole " + id
	if cutoff != nil {
		head += fmt.Sprintf(" (grade > %g%%)", *cutoff)
	}
	b.WriteString(r.title(head) + "\n")
	if len(entries) == 0 {
		b.WriteString(r.note("  no samples") + "\n")
		return b.String()
	}
	st := report.StatsOf(entries)
	b.WriteString(r.note(fmt.Sprintf("  locality %s, %d samples, max %.2f%%, min %.2f%%", st.Locality, st.Samples, st.Max, st.Min)) + "\n")
	b.WriteString(fmt.Sprintf("  %-14s %8s  %s\n", "DEPTH", "MN %", "BUCKET"))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %-14s %8.2f  %s\n", e.DepthLabel, e.Grade, r.Swatch(e.Color, e.Bucket)))
	}
	return b.String()
}

// Summary renders group summaries as a table.
func (r *Renderer) Summary(title string, gs []aggregate.GroupSummary, t grade.Table) string {
	var b strings.Builder
	b.WriteString(r.title(title) + "\n")
	if len(gs) == 0 {
		b.WriteString(r.note("  no groups") + "\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  %-16s %7s %8s %8s %8s %8s %7s  %s\n", "KEY", "N", "MEAN", "MIN", "MAX", "FE", "MN/FE", "MAX BUCKET"))
	for _, g := range gs {
		fe, ratio := "-", "-"
		if g.HasIron {
			fe = fmt.Sprintf("%.2f", g.MeanIron)
			ratio = fmt.Sprintf("%.2f", g.Ratio)
		}
		sw := ""
		if bk, err := t.Bucket(g.Max); err == nil {
			sw = r.Swatch(bk.Color, bk.Label)
		}
		key := g.Key
		if loc := g.Locality(); loc != "" && loc != g.Key {
			key += " (" + loc + ")"
		}
		b.WriteString(fmt.Sprintf("  %-16s %7s %8.2f %8.2f %8.2f %8s %7s  %s\n",
			key, fmt.Sprintf("%d/%d", g.Count, g.Total), g.Mean, g.Min, g.Max, fe, ratio, sw))
	}
	return b.String()
}

// Histogram renders bins as horizontal bars scaled to the largest count.
func (r *Renderer) Histogram(bins []report.HistogramBin) string {
	var b strings.Builder
	b.WriteString(r.title("Grade histogram") + "\n")
	if len(bins) == 0 {
		b.WriteString(r.note("  no samples") + "\n")
		return b.String()
	}
	maxN := 0
	for _, h := range bins {
		if h.Count > maxN {
			maxN = h.Count
		}
	}
	for _, h := range bins {
		n := 0
		if maxN > 0 {
			n = h.Count * barWidth / maxN
		}
		bar := strings.Repeat("█", n)
		if r.color && bar != "" {
			bar = r.lg.NewStyle().Foreground(lipgloss.Color(h.Color)).Render(bar)
		}
		b.WriteString(fmt.Sprintf("  %-9s %5d %s\n", h.Label, h.Count, bar))
	}
	return b.String()
}
