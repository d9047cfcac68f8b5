package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/grade"
)

// ErrInvalidBinWidth is returned for a non-positive or non-finite histogram bin width.
var ErrInvalidBinWidth = errors.New("bin width must be a finite value > 0")

// MaxHistogramBins bounds the number of bins GradeHistogram will build.
const MaxHistogramBins = 10000

// ErrTooManyBins is returned when the bin width is too small for the observed grade range.
var ErrTooManyBins = fmt.Errorf("bin width too small: more than %d bins", MaxHistogramBins)

// UnknownBoreholeError reports a borehole id never seen in the source.
type UnknownBoreholeError struct {
	ID string
}

func (e *UnknownBoreholeError) Error() string {
	return fmt.Sprintf("unknown borehole %q", e.ID)
}

// Options configures an Engine.
type Options struct {
	// Buckets defaults to grade.DefaultTable when zero.
	Buckets grade.Table
	// KnownBoreholes lists every id seen in the source, including ids whose rows were all rejected.
	KnownBoreholes []string
	Diagnostics    assay.Diagnostics
}

// Engine answers report queries over an immutable record set. Safe for concurrent use.
type Engine struct {
	records []assay.Record
	buckets grade.Table
	known   map[string]struct{}
	ids     []string
	diag    assay.Diagnostics
}

// ProfileEntry is one interval of a borehole profile.
type ProfileEntry struct {
	DepthLabel string  `json:"depth_label"`
	DepthFrom  float64 `json:"depth_from"`
	DepthTo    float64 `json:"depth_to"`
	DepthMid   float64 `json:"depth_mid"`
	Grade      float64 `json:"grade_percent"`
	Bucket     string  `json:"bucket"`
	Color      string  `json:"color"`
	SampleID   string  `json:"sample_id,omitempty"`
	Locality   string  `json:"locality"`
}

// ProfileStats summarizes profile entries: locality, sample count and grade range.
type ProfileStats struct {
	Locality string
	Samples  int
	Max, Min float64
}

// StatsOf computes ProfileStats over entries. The locality is the first entry's.
func StatsOf(entries []ProfileEntry) ProfileStats {
	st := ProfileStats{Samples: len(entries)}
	for i, e := range entries {
		if i == 0 {
			st.Locality, st.Max, st.Min = e.Locality, e.Grade, e.Grade
			continue
		}
		st.Max = math.Max(st.Max, e.Grade)
		st.Min = math.Min(st.Min, e.Grade)
	}
	return st
}

// HistogramBin counts grades in [Lower, Upper).
type HistogramBin struct {
	Label  string  `json:"label"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Count  int     `json:"count"`
	Bucket string  `json:"bucket"`
	Color  string  `json:"color"`
}

// Overview summarizes the whole table.
type Overview struct {
	Samples    int     `json:"samples"`
	Boreholes  int     `json:"boreholes"`
	Localities int     `json:"localities"`
	MaxGrade   float64 `json:"max_grade"`
	MinGrade   float64 `json:"min_grade"`
	MeanGrade  float64 `json:"mean_grade"`
	Suspect    int     `json:"suspect"`
	Rejected   int     `json:"rejected"`
}

// New builds an Engine. Records are copied.
func New(records []assay.Record, opt Options) (*Engine, error) {
	buckets := opt.Buckets
	if buckets.Len() == 0 {
		buckets = grade.DefaultTable()
	}
	e := &Engine{
		records: append([]assay.Record(nil), records...),
		buckets: buckets,
		known:   map[string]struct{}{},
		diag:    opt.Diagnostics,
	}
	for _, r := range e.records {
		if _, err := buckets.Bucket(r.Grade); err != nil {
			return nil, fmt.Errorf("borehole %s at %v m: %w", r.BoreholeID, r.DepthFrom, err)
		}
		e.known[r.BoreholeID] = struct{}{}
	}
	for _, id := range opt.KnownBoreholes {
		if id != "" {
			e.known[id] = struct{}{}
		}
	}
	e.ids = make([]string, 0, len(e.known))
	for id := range e.known {
		e.ids = append(e.ids, id)
	}
	sort.Strings(e.ids)
	return e, nil
}

// BoreholeProfile returns the intervals of one borehole above the optional cutoff, by depth.
// A known borehole with no qualifying rows yields an empty slice.
func (e *Engine) BoreholeProfile(id string, cutoff *float64) ([]ProfileEntry, error) {
	if _, ok := e.known[id]; !ok {
		return nil, &UnknownBoreholeError{ID: id}
	}
	out := []ProfileEntry{}
	for _, r := range e.records {
		if r.BoreholeID != id {
			continue
		}
		if cutoff != nil && !(r.Grade > *cutoff) {
			continue
		}
		b, _ := e.buckets.Bucket(r.Grade)
		out = append(out, ProfileEntry{
			DepthLabel: DepthLabel(r.DepthFrom, r.DepthTo),
			DepthFrom:  r.DepthFrom,
			DepthTo:    r.DepthTo,
			DepthMid:   r.DepthMid,
			Grade:      r.Grade,
			Bucket:     b.Label,
			Color:      b.Color,
			SampleID:   r.SampleID,
			Locality:   r.Locality,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepthFrom < out[j].DepthFrom })
	return out, nil
}

// LocalitySummary aggregates by locality, highest max grade first.
func (e *Engine) LocalitySummary(cutoff *float64) []aggregate.GroupSummary {
	return aggregate.Aggregate(e.records, aggregate.ByLocality, aggregate.Options{Cutoff: cutoff, Order: aggregate.ByMaxDesc})
}

// LocalitySummaryOrdered is LocalitySummary with an explicit order.
func (e *Engine) LocalitySummaryOrdered(cutoff *float64, o aggregate.Order) []aggregate.GroupSummary {
	return aggregate.Aggregate(e.records, aggregate.ByLocality, aggregate.Options{Cutoff: cutoff, Order: o})
}

// BoreholeSummary aggregates by borehole id, ordered by id.
func (e *Engine) BoreholeSummary(cutoff *float64) []aggregate.GroupSummary {
	return aggregate.Aggregate(e.records, aggregate.ByBorehole, aggregate.Options{Cutoff: cutoff, Order: aggregate.ByKey})
}

// GradeHistogram bins grades into [k*w, (k+1)*w) intervals from 0 to the first multiple of w
// above the max. When the max is itself a multiple of w it falls in the last bin.
func (e *Engine) GradeHistogram(binWidth float64) ([]HistogramBin, error) {
	if !(binWidth > 0) || math.IsInf(binWidth, 0) {
		return nil, ErrInvalidBinWidth
	}
	if len(e.records) == 0 {
		return []HistogramBin{}, nil
	}
	maxG := 0.0
	for _, r := range e.records {
		if r.Grade > maxG {
			maxG = r.Grade
		}
	}
	span := math.Ceil(maxG / binWidth)
	if math.IsNaN(span) || span > MaxHistogramBins {
		return nil, ErrTooManyBins
	}
	n := int(span)
	if n < 1 {
		n = 1
	}
	bins := make([]HistogramBin, n)
	for i := range bins {
		lo, hi := float64(i)*binWidth, float64(i+1)*binWidth
		b, _ := e.buckets.Bucket((lo + hi) / 2)
		bins[i] = HistogramBin{
			Label:  fmtNum(lo) + "–" + fmtNum(hi),
			Lower:  lo,
			Upper:  hi,
			Bucket: b.Label,
			Color:  b.Color,
		}
	}
	for _, r := range e.records {
		i := int(math.Floor(r.Grade / binWidth))
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins, nil
}

// Boreholes returns every known borehole id, sorted.
func (e *Engine) Boreholes() []string {
	return append([]string(nil), e.ids...)
}

// Buckets returns the engine's grade table.
func (e *Engine) Buckets() grade.Table { return e.buckets }

// Diagnostics returns the sanitize diagnostics the engine was built with.
func (e *Engine) Diagnostics() assay.Diagnostics { return e.diag }

// Records returns a copy of the records.
func (e *Engine) Records() []assay.Record {
	return append([]assay.Record(nil), e.records...)
}

// Overview returns table-wide counts and grade statistics.
func (e *Engine) Overview() Overview {
	ov := Overview{
		Samples:   len(e.records),
		Boreholes: len(e.ids),
		Rejected:  e.diag.Rejected,
	}
	locs := map[string]struct{}{}
	sum := 0.0
	for i, r := range e.records {
		locs[r.Locality] = struct{}{}
		sum += r.Grade
		if i == 0 || r.Grade > ov.MaxGrade {
			ov.MaxGrade = r.Grade
		}
		if i == 0 || r.Grade < ov.MinGrade {
			ov.MinGrade = r.Grade
		}
		if r.Suspect {
			ov.Suspect++
		}
	}
	ov.Localities = len(locs)
	if len(e.records) > 0 {
		ov.MeanGrade = sum / float64(len(e.records))
	}
	return ov
}

// DepthLabel renders an interval as "0–1 m".
func DepthLabel(from, to float64) string {
	return fmt.Sprintf("%s–%s m", fmtNum(from), fmtNum(to))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
