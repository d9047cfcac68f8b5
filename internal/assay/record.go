package assay

import "github.com/KaramelBytes/assayreport/internal/schema"

// RawRow is one source row keyed by raw header. Values are strings, numbers or nil.
type RawRow map[string]any

// Record is one sanitized sample interval.
type Record struct {
	BoreholeID string  `json:"borehole_id"`
	Locality   string  `json:"locality"`
	SampleID   string  `json:"sample_id,omitempty"`
	DepthFrom  float64 `json:"depth_from"`
	DepthTo    float64 `json:"depth_to"`
	DepthMid   float64 `json:"depth_mid"`
	Grade      float64 `json:"grade_percent"`
	Iron       float64 `json:"iron_percent,omitempty"`
	HasIron    bool    `json:"has_iron"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Z          float64 `json:"z,omitempty"`
	HasCoords  bool    `json:"has_coords"`
	// Suspect marks grades above 100%.
	Suspect bool `json:"suspect,omitempty"`
}

// Raw converts the record back into a row keyed by canonical field names.
// Grade and iron are already in percent, so a second Sanitize pass must run with Scale 1.
func (r Record) Raw() RawRow {
	row := RawRow{
		string(schema.BoreholeID): r.BoreholeID,
		string(schema.Locality):   r.Locality,
		string(schema.DepthFrom):  r.DepthFrom,
		string(schema.DepthTo):    r.DepthTo,
		string(schema.Grade):      r.Grade,
	}
	if r.SampleID != "" {
		row[string(schema.SampleID)] = r.SampleID
	}
	if r.HasIron {
		row[string(schema.Iron)] = r.Iron
	}
	if r.HasCoords {
		row[string(schema.X)] = r.X
		row[string(schema.Y)] = r.Y
		row[string(schema.Z)] = r.Z
	}
	return row
}

// RawRows converts records with Raw.
func RawRows(recs []Record) []RawRow {
	out := make([]RawRow, len(recs))
	for i, r := range recs {
		out[i] = r.Raw()
	}
	return out
}
