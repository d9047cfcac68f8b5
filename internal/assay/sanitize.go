package assay

import (
	"sort"
	"strings"
	"unicode"

	"github.com/KaramelBytes/assayreport/internal/schema"
)

// Rejection reasons reported in Diagnostics.Reasons.
const (
	ReasonMissingBorehole = "missing borehole_id"
	ReasonMissingLocality = "missing locality"
	ReasonMissingDepth    = "missing depth"
	ReasonInvalidDepth    = "invalid depth"
	ReasonNegativeDepth   = "negative depth"
	ReasonDepthOrder      = "depth_from > depth_to"
	ReasonMissingGrade    = "missing grade"
	ReasonInvalidGrade    = "invalid grade"
	ReasonNegativeGrade   = "negative grade"
)

// SuspectGrade is the grade above which a record is flagged.
const SuspectGrade = 100.0

// Options controls coercion.
type Options struct {
	// DecimalSeparator forces '.' or ','; 0 auto-detects per value.
	DecimalSeparator rune
	// DeriveLocality fills an empty locality from the borehole id prefix.
	DeriveLocality bool
	// Scale multiplies grade and iron values; 0 means 1.
	Scale float64
}

// Diagnostics summarizes a sanitize pass.
type Diagnostics struct {
	Total       int            `json:"total"`
	Kept        int            `json:"kept"`
	Rejected    int            `json:"rejected"`
	Reasons     map[string]int `json:"reasons,omitempty"`
	Suspect     int            `json:"suspect"`
	IronDropped int            `json:"iron_dropped"`
	// Boreholes holds every distinct non-empty borehole id seen, kept or not.
	Boreholes []string `json:"boreholes"`
}

func (d *Diagnostics) reject(reason string) {
	d.Rejected++
	if d.Reasons == nil {
		d.Reasons = map[string]int{}
	}
	d.Reasons[reason]++
}

// Sanitize coerces raw rows into records. Invalid rows are dropped and counted, never returned as errors.
func Sanitize(rows []RawRow, m schema.Mapping, opt Options) ([]Record, Diagnostics) {
	scale := opt.Scale
	if scale == 0 {
		scale = 1
	}
	get := func(row RawRow, f schema.Field) any {
		h, ok := m.Header(f)
		if !ok {
			return nil
		}
		return row[h]
	}
	var (
		out  []Record
		diag Diagnostics
	)
	seen := map[string]struct{}{}
	for _, row := range rows {
		diag.Total++
		var rec Record
		rec.BoreholeID = toString(get(row, schema.BoreholeID))
		if rec.BoreholeID == "" {
			diag.reject(ReasonMissingBorehole)
			continue
		}
		if _, ok := seen[rec.BoreholeID]; !ok {
			seen[rec.BoreholeID] = struct{}{}
			diag.Boreholes = append(diag.Boreholes, rec.BoreholeID)
		}
		rec.Locality = toString(get(row, schema.Locality))
		if rec.Locality == "" && opt.DeriveLocality {
			rec.Locality = LocalityPrefix(rec.BoreholeID)
		}
		if rec.Locality == "" {
			diag.reject(ReasonMissingLocality)
			continue
		}

		from, fromPresent, fromOK := toFloat(get(row, schema.DepthFrom), opt.DecimalSeparator)
		to, toPresent, toOK := toFloat(get(row, schema.DepthTo), opt.DecimalSeparator)
		switch {
		case !fromPresent || !toPresent:
			diag.reject(ReasonMissingDepth)
			continue
		case !fromOK || !toOK || !finite(from) || !finite(to):
			diag.reject(ReasonInvalidDepth)
			continue
		case from < 0 || to < 0:
			diag.reject(ReasonNegativeDepth)
			continue
		case from > to:
			diag.reject(ReasonDepthOrder)
			continue
		}
		rec.DepthFrom, rec.DepthTo = from, to
		rec.DepthMid = (from + to) / 2

		g, gPresent, gOK := toFloat(get(row, schema.Grade), opt.DecimalSeparator)
		switch {
		case !gPresent:
			diag.reject(ReasonMissingGrade)
			continue
		case !gOK || !finite(g):
			diag.reject(ReasonInvalidGrade)
			continue
		case g < 0:
			diag.reject(ReasonNegativeGrade)
			continue
		}
		rec.Grade = g * scale
		rec.Suspect = rec.Grade > SuspectGrade

		if fe, present, ok := toFloat(get(row, schema.Iron), opt.DecimalSeparator); present {
			if ok && finite(fe) && fe >= 0 {
				rec.Iron, rec.HasIron = fe*scale, true
			} else {
				diag.IronDropped++
			}
		}
		rec.SampleID = toString(get(row, schema.SampleID))
		x, _, xOK := toFloat(get(row, schema.X), opt.DecimalSeparator)
		y, _, yOK := toFloat(get(row, schema.Y), opt.DecimalSeparator)
		z, _, zOK := toFloat(get(row, schema.Z), opt.DecimalSeparator)
		if xOK && yOK && zOK && finite(x) && finite(y) && finite(z) {
			rec.X, rec.Y, rec.Z, rec.HasCoords = x, y, z, true
		}

		if rec.Suspect {
			diag.Suspect++
		}
		diag.Kept++
		out = append(out, rec)
	}
	sort.Strings(diag.Boreholes)
	return out, diag
}

// LocalityPrefix returns the leading run of letters of a borehole id, uppercased.
func LocalityPrefix(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		if !unicode.IsLetter(r) {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
