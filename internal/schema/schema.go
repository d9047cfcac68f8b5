package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a canonical column name.
type Field string

const (
	BoreholeID Field = "BOREHOLE_ID"
	Locality   Field = "LOCALITY"
	DepthFrom  Field = "DEPTH_FROM"
	DepthTo    Field = "DEPTH_TO"
	Grade      Field = "GRADE_PERCENT"
	Iron       Field = "IRON_PERCENT"
	SampleID   Field = "SAMPLE_ID"
	X          Field = "X"
	Y          Field = "Y"
	Z          Field = "Z"
)

// Required lists the fields every source must provide.
var Required = []Field{BoreholeID, Locality, DepthFrom, DepthTo, Grade}

// Optional lists fields that are mapped when present.
var Optional = []Field{Iron, SampleID, X, Y, Z}

// Fields returns required then optional fields.
func Fields() []Field {
	out := make([]Field, 0, len(Required)+len(Optional))
	out = append(out, Required...)
	return append(out, Optional...)
}

// Synonyms maps each canonical field to the raw header variants that resolve to it.
type Synonyms map[Field][]string

// DefaultSynonyms returns the header variants seen across the assay spreadsheets.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		BoreholeID: {"HOLE_ID", "FURO", "ID", "HOLE", "BHID", "BOREHOLE"},
		Locality:   {"LOCAL", "LOCALIDADE", "AREA", "PROSPECT"},
		DepthFrom:  {"FROM", "DE", "PROF_DE", "DEPTH_DE"},
		DepthTo:    {"TO", "ATE", "PROF_ATE", "DEPTH_ATE"},
		Grade:      {"MN", "MN_%", "MN_(%)", "MN_PCT", "TEOR_MN", "GRADE"},
		Iron:       {"FE", "FE_%", "FE_(%)", "FE_PCT", "TEOR_FE"},
		SampleID:   {"AMOSTRA", "SAMPLE", "SAMPLE_NO"},
		X:          {"EAST", "EASTING"},
		Y:          {"NORTH", "NORTHING"},
		Z:          {"ELEV", "ELEVATION", "RL"},
	}
}

// Validate reports variants that resolve to more than one field.
func (s Synonyms) Validate() error {
	owner := map[string]Field{}
	for _, f := range sortedFields(s) {
		for _, v := range append([]string{string(f)}, s[f]...) {
			c := Canonicalize(v)
			if c == "" {
				continue
			}
			if prev, ok := owner[c]; ok && prev != f {
				return fmt.Errorf("synonym %q maps to both %s and %s", v, prev, f)
			}
			owner[c] = f
		}
	}
	return nil
}

func (s Synonyms) lookup() map[string]Field {
	out := map[string]Field{}
	for _, f := range Fields() {
		out[string(f)] = f
	}
	for _, f := range sortedFields(s) {
		out[Canonicalize(string(f))] = f
		for _, v := range s[f] {
			if c := Canonicalize(v); c != "" {
				if _, taken := out[c]; !taken {
					out[c] = f
				}
			}
		}
	}
	return out
}

func sortedFields(s Synonyms) []Field {
	fs := make([]Field, 0, len(s))
	for f := range s {
		fs = append(fs, f)
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
	return fs
}

var separators = regexp.MustCompile(`[\s.]+`)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize trims, collapses whitespace and dots to '_', uppercases and strips diacritics.
func Canonicalize(h string) string {
	s := strings.TrimSpace(strings.ReplaceAll(h, "\u00a0", " "))
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = separators.ReplaceAllString(s, "_")
	return strings.ToUpper(s)
}

// Options tunes normalization.
type Options struct {
	// DeriveLocality drops LOCALITY from the required columns; the sanitizer derives it
	// from the borehole id prefix.
	DeriveLocality bool
}

// Mapping resolves canonical fields to raw headers.
type Mapping struct {
	Columns map[Field]string
	// Duplicates lists raw headers ignored because an earlier header resolved to the same field.
	Duplicates map[Field][]string
}

// Header returns the raw header for f.
func (m Mapping) Header(f Field) (string, bool) {
	h, ok := m.Columns[f]
	return h, ok
}

// Has reports whether f is mapped.
func (m Mapping) Has(f Field) bool {
	_, ok := m.Columns[f]
	return ok
}

// Identity maps every field to its own canonical name.
func Identity() Mapping {
	cols := map[Field]string{}
	for _, f := range Fields() {
		cols[f] = string(f)
	}
	return Mapping{Columns: cols}
}

// MissingColumnError lists every required field without a matching header.
type MissingColumnError struct {
	Missing []Field
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
}

// Normalize maps raw headers to canonical fields. The first header resolving to a field wins.
func Normalize(headers []string, syn Synonyms, opt Options) (Mapping, error) {
	if syn == nil {
		syn = DefaultSynonyms()
	}
	lookup := syn.lookup()
	m := Mapping{Columns: map[Field]string{}}
	for _, raw := range headers {
		f, ok := lookup[Canonicalize(raw)]
		if !ok {
			continue
		}
		if _, taken := m.Columns[f]; taken {
			if m.Duplicates == nil {
				m.Duplicates = map[Field][]string{}
			}
			m.Duplicates[f] = append(m.Duplicates[f], raw)
			continue
		}
		m.Columns[f] = raw
	}
	var missing []Field
	for _, f := range Required {
		if f == Locality && opt.DeriveLocality {
			continue
		}
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Mapping{}, &MissingColumnError{Missing: missing}
	}
	return m, nil
}
