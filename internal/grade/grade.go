package grade

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Bucket is the half-open grade interval [Lower, Upper) mapped to a label and colour.
// The last bucket of a table has Upper = +Inf.
type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"-"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Open reports whether the bucket has no upper bound.
func (b Bucket) Open() bool { return math.IsInf(b.Upper, 1) }

// Range renders the interval, e.g. "5–10%" or "≥40%".
func (b Bucket) Range() string {
	if b.Open() {
		return "≥" + fmtBound(b.Lower) + "%"
	}
	return fmtBound(b.Lower) + "–" + fmtBound(b.Upper) + "%"
}

// Threshold is a bucket's lower bound with its label and colour.
type Threshold struct {
	Lower float64 `mapstructure:"lower" yaml:"lower" json:"lower"`
	Label string  `mapstructure:"label" yaml:"label" json:"label"`
	Color string  `mapstructure:"color" yaml:"color" json:"color"`
}

// Table is an ordered, contiguous set of buckets covering [0, +Inf).
type Table struct {
	buckets []Bucket
}

// DefaultThresholds mirrors the heat-map legend used for manganese grades.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Lower: 0, Label: "very_low", Color: "#00008B"},
		{Lower: 5, Label: "low", Color: "#00CED1"},
		{Lower: 10, Label: "medium", Color: "#008000"},
		{Lower: 15, Label: "medium_high", Color: "#FFFF00"},
		{Lower: 20, Label: "high", Color: "#FFA500"},
		{Lower: 30, Label: "very_high", Color: "#8B0000"},
		{Lower: 40, Label: "extreme", Color: "#4B0000"},
	}
}

// DefaultTable returns the table built from DefaultThresholds.
func DefaultTable() Table {
	t, err := NewTable(DefaultThresholds())
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable builds a table. Each bucket's upper bound is the next threshold's lower bound.
func NewTable(ths []Threshold) (Table, error) {
	if len(ths) == 0 {
		return Table{}, errors.New("bucket table is empty")
	}
	if ths[0].Lower != 0 {
		return Table{}, fmt.Errorf("first bucket must start at 0, got %v", ths[0].Lower)
	}
	seen := map[string]struct{}{}
	buckets := make([]Bucket, len(ths))
	for i, th := range ths {
		if math.IsNaN(th.Lower) || math.IsInf(th.Lower, 0) {
			return Table{}, fmt.Errorf("bucket %d: lower bound must be finite", i)
		}
		if th.Label == "" {
			return Table{}, fmt.Errorf("bucket %d: empty label", i)
		}
		if _, dup := seen[th.Label]; dup {
			return Table{}, fmt.Errorf("bucket %d: duplicate label %q", i, th.Label)
		}
		seen[th.Label] = struct{}{}
		if i > 0 && th.Lower <= ths[i-1].Lower {
			return Table{}, fmt.Errorf("bucket %d: lower bound %v not above %v", i, th.Lower, ths[i-1].Lower)
		}
		upper := math.Inf(1)
		if i+1 < len(ths) {
			upper = ths[i+1].Lower
		}
		buckets[i] = Bucket{Lower: th.Lower, Upper: upper, Label: th.Label, Color: th.Color}
	}
	return Table{buckets: buckets}, nil
}

// InvalidGradeError reports a grade outside the classifier's domain.
type InvalidGradeError struct {
	Grade float64
}

func (e *InvalidGradeError) Error() string {
	return fmt.Sprintf("invalid grade %v: must be a finite value >= 0", e.Grade)
}

// Bucket returns the bucket containing x.
func (t Table) Bucket(x float64) (Bucket, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 || len(t.buckets) == 0 {
		return Bucket{}, &InvalidGradeError{Grade: x}
	}
	// first bucket whose lower bound exceeds x, minus one
	i := sort.Search(len(t.buckets), func(i int) bool { return t.buckets[i].Lower > x }) - 1
	return t.buckets[i], nil
}

// Classify returns the label of the bucket containing x.
func (t Table) Classify(x float64) (string, error) {
	b, err := t.Bucket(x)
	if err != nil {
		return "", err
	}
	return b.Label, nil
}

// Buckets returns a copy of the table's buckets in order.
func (t Table) Buckets() []Bucket {
	out := make([]Bucket, len(t.buckets))
	copy(out, t.buckets)
	return out
}

// Thresholds returns the table as thresholds, suitable for config round-trips.
func (t Table) Thresholds() []Threshold {
	out := make([]Threshold, len(t.buckets))
	for i, b := range t.buckets {
		out[i] = Threshold{Lower: b.Lower, Label: b.Label, Color: b.Color}
	}
	return out
}

// Legend returns the range label of every bucket.
func (t Table) Legend() []string {
	out := make([]string, len(t.buckets))
	for i, b := range t.buckets {
		out[i] = b.Range()
	}
	return out
}

// Len returns the number of buckets.
func (t Table) Len() int { return len(t.buckets) }

func fmtBound(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
