package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/schema"
)

// KeyFunc extracts the grouping key from a record.
type KeyFunc func(assay.Record) string

// ByBorehole groups by borehole id.
func ByBorehole(r assay.Record) string { return r.BoreholeID }

// ByLocality groups by locality.
func ByLocality(r assay.Record) string { return r.Locality }

// KeyFor returns the KeyFunc for a canonical field.
func KeyFor(f schema.Field) (KeyFunc, error) {
	switch f {
	case schema.BoreholeID:
		return ByBorehole, nil
	case schema.Locality:
		return ByLocality, nil
	default:
		return nil, fmt.Errorf("unsupported group key %q", f)
	}
}

// Order selects how summaries are sorted.
type Order int

const (
	// ByMaxDesc sorts by max grade descending, ties by key ascending.
	ByMaxDesc Order = iota
	// ByKey sorts by key ascending.
	ByKey
)

// ParseOrder maps "max" and "key" to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "max":
		return ByMaxDesc, nil
	case "key":
		return ByKey, nil
	default:
		return ByMaxDesc, fmt.Errorf("unknown order %q (want max|key)", s)
	}
}

func (o Order) String() string {
	if o == ByKey {
		return "key"
	}
	return "max"
}

// Options controls Aggregate.
type Options struct {
	// Cutoff keeps only records with Grade > *Cutoff when set.
	Cutoff *float64
	Order  Order
}

// GroupSummary holds grade statistics for one key.
type GroupSummary struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	// Iron statistics are set only when some row in the group carries iron.
	HasIron  bool    `json:"has_iron"`
	MeanIron float64 `json:"mean_iron,omitempty"`
	Ratio    float64 `json:"mn_fe_ratio,omitempty"`
	// Total counts rows in the group before the cutoff.
	Total     int `json:"total"`
	Boreholes int `json:"boreholes"`
	// Localities lists the distinct localities of the counted samples, sorted.
	Localities []string `json:"localities"`
}

type acc struct {
	total    int
	cnt      int
	sum      float64
	min, max float64
	feCnt    int
	feSum    float64
	holes    map[string]struct{}
	locs     map[string]struct{}
}

// Aggregate groups records by key and summarizes grades. Groups left empty by the cutoff are omitted.
func Aggregate(recs []assay.Record, key KeyFunc, opt Options) []GroupSummary {
	if len(recs) == 0 {
		return nil
	}
	groups := map[string]*acc{}
	for _, r := range recs {
		k := key(r)
		a := groups[k]
		if a == nil {
			a = &acc{holes: map[string]struct{}{}, locs: map[string]struct{}{}}
			groups[k] = a
		}
		a.total++
		if opt.Cutoff != nil && !(r.Grade > *opt.Cutoff) {
			continue
		}
		if a.cnt == 0 || r.Grade < a.min {
			a.min = r.Grade
		}
		if a.cnt == 0 || r.Grade > a.max {
			a.max = r.Grade
		}
		a.cnt++
		a.sum += r.Grade
		if r.HasIron {
			a.feCnt++
			a.feSum += r.Iron
		}
		a.holes[r.BoreholeID] = struct{}{}
		a.locs[r.Locality] = struct{}{}
	}

	var out []GroupSummary
	for k, a := range groups {
		if a.cnt == 0 {
			continue
		}
		gs := GroupSummary{
			Key:       k,
			Count:     a.cnt,
			Mean:      a.sum / float64(a.cnt),
			Max:       a.max,
			Min:       a.min,
			Total:     a.total,
			Boreholes: len(a.holes),
		}
		for l := range a.locs {
			gs.Localities = append(gs.Localities, l)
		}
		sort.Strings(gs.Localities)
		if a.feCnt > 0 {
			gs.HasIron = true
			gs.MeanIron = a.feSum / float64(a.feCnt)
			if gs.MeanIron != 0 {
				gs.Ratio = gs.Mean / gs.MeanIron
			}
		}
		out = append(out, gs)
	}
	Sort(out, opt.Order)
	return out
}

// Sort orders summaries in place.
func Sort(gs []GroupSummary, o Order) {
	sort.Slice(gs, func(i, j int) bool {
		if o == ByMaxDesc && gs[i].Max != gs[j].Max {
			return gs[i].Max > gs[j].Max
		}
		return gs[i].Key < gs[j].Key
	})
}

// Locality returns the group's localities joined with ", ".
func (g GroupSummary) Locality() string {
	return strings.Join(g.Localities, ", ")
}

// Find returns the summary with the given key.
func Find(gs []GroupSummary, key string) (GroupSummary, bool) {
	for _, g := range gs {
		if g.Key == key {
			return g, true
		}
	}
	return GroupSummary{}, false
}
