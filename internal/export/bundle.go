// Package export writes report results to files, object storage and SQL databases.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/storage"
	"github.com/KaramelBytes/assayreport/internal/utils"
)

// RecordRow is a record with its grade bucket.
type RecordRow struct {
	assay.Record
	Bucket string `json:"bucket"`
	Color  string `json:"color"`
}

// Bundle is one export run.
type Bundle struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Source      string                   `json:"source"`
	Cutoff      *float64                 `json:"cutoff,omitempty"`
	BinWidth    float64                  `json:"bin_width"`
	Overview    report.Overview          `json:"overview"`
	Records     []RecordRow              `json:"records"`
	Localities  []aggregate.GroupSummary `json:"localities"`
	Boreholes   []aggregate.GroupSummary `json:"boreholes"`
	Histogram   []report.HistogramBin    `json:"histogram"`
	Diagnostics assay.Diagnostics        `json:"diagnostics"`
}

// NewBundle snapshots every view of e. The cutoff applies to the summaries only.
func NewBundle(source string, e *report.Engine, cutoff *float64, binWidth float64) (*Bundle, error) {
	hist, err := e.GradeHistogram(binWidth)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	tbl := e.Buckets()
	recs := e.Records()
	rows := make([]RecordRow, len(recs))
	for i, r := range recs {
		b, err := tbl.Bucket(r.Grade)
		if err != nil {
			return nil, err
		}
		rows[i] = RecordRow{Record: r, Bucket: b.Label, Color: b.Color}
	}
	return &Bundle{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Cutoff:      cutoff,
		BinWidth:    binWidth,
		Overview:    e.Overview(),
		Records:     rows,
		Localities:  e.LocalitySummary(cutoff),
		Boreholes:   e.BoreholeSummary(cutoff),
		Histogram:   hist,
		Diagnostics: e.Diagnostics(),
	}, nil
}

// EncodeJSON renders the bundle as indented JSON.
func EncodeJSON(b *Bundle) ([]byte, error) {
	return utils.PrettyJSON(b)
}

// Save writes data to a local path atomically, or uploads it for s3:// and gs:// destinations.
func Save(ctx context.Context, dest string, data []byte, contentType string, cfg storage.Config) error {
	loc, err := storage.ParseURI(dest)
	if err != nil {
		return err
	}
	if loc.Scheme == "file" {
		return utils.SafeWriteFile(loc.Key, data)
	}
	return storage.Upload(ctx, dest, data, contentType, cfg)
}
