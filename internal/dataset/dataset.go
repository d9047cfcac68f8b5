// Package dataset loads a source workbook into sanitized assay records.
package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/KaramelBytes/assayreport/internal/assay"
	"github.com/KaramelBytes/assayreport/internal/config"
	"github.com/KaramelBytes/assayreport/internal/grade"
	"github.com/KaramelBytes/assayreport/internal/logger"
	"github.com/KaramelBytes/assayreport/internal/report"
	"github.com/KaramelBytes/assayreport/internal/schema"
	"github.com/KaramelBytes/assayreport/internal/storage"
	"github.com/KaramelBytes/assayreport/internal/table"
)

// Options controls Load.
type Options struct {
	Source   string
	Table    table.Options
	Synonyms schema.Synonyms
	Schema   schema.Options
	Assay    assay.Options
	Storage  storage.Config
	Log      *logger.Logger
}

// Dataset is a loaded, sanitized source.
type Dataset struct {
	Name        string
	Headers     []string
	Mapping     schema.Mapping
	Records     []assay.Record
	Diagnostics assay.Diagnostics
}

// OptionsFromConfig derives load options from configuration.
func OptionsFromConfig(c *config.Global) (Options, error) {
	syn, err := c.SynonymTable()
	if err != nil {
		return Options{}, err
	}
	dec, err := c.DecimalRune()
	if err != nil {
		return Options{}, err
	}
	scale, err := c.GradeScale()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Source:   c.Source,
		Table:    table.Options{Delimiter: c.DelimiterRune(), SheetName: c.SheetName, SheetIndex: c.SheetIndex},
		Synonyms: syn,
		Schema:   schema.Options{DeriveLocality: c.DeriveLocality},
		Assay:    assay.Options{DecimalSeparator: dec, DeriveLocality: c.DeriveLocality, Scale: scale},
		Storage:  c.StorageConfig(),
	}, nil
}

// Load fetches, reads, normalizes and sanitizes the source.
// A missing required column aborts the load; invalid rows are only counted.
func Load(ctx context.Context, opt Options) (*Dataset, error) {
	log := opt.Log
	if log == nil {
		log = logger.Nop()
	}
	if opt.Source == "" {
		return nil, fmt.Errorf("no source configured (use --source or set source in config)")
	}
	data, loc, err := storage.Fetch(ctx, opt.Source, opt.Storage)
	if err != nil {
		return nil, err
	}
	log.Debug("fetched source", "uri", loc.String(), "bytes", len(data))

	raw, err := table.Read(loc.Base(), data, opt.Table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc.Base(), err)
	}
	m, err := schema.Normalize(raw.Headers, opt.Synonyms, opt.Schema)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", raw.Name, err)
	}
	for _, f := range sortedDupFields(m) {
		log.Warn("duplicate column ignored", "field", string(f), "used", m.Columns[f], "ignored", m.Duplicates[f])
	}

	recs, diag := assay.Sanitize(raw.RawRows(), m, opt.Assay)
	if diag.Rejected > 0 {
		log.Warn("rows rejected", "source", raw.Name, "rejected", diag.Rejected, "reasons", diag.Reasons)
	}
	if diag.Suspect > 0 {
		log.Warn("grades above 100% kept as suspect", "count", diag.Suspect)
	}
	log.Info("loaded source", "source", raw.Name, "rows", diag.Total, "kept", diag.Kept)

	return &Dataset{
		Name:        raw.Name,
		Headers:     raw.Headers,
		Mapping:     m,
		Records:     recs,
		Diagnostics: diag,
	}, nil
}

// Engine builds a report engine over the dataset.
func (d *Dataset) Engine(buckets grade.Table) (*report.Engine, error) {
	return report.New(d.Records, report.Options{
		Buckets:        buckets,
		KnownBoreholes: d.Diagnostics.Boreholes,
		Diagnostics:    d.Diagnostics,
	})
}

func sortedDupFields(m schema.Mapping) []schema.Field {
	out := make([]schema.Field, 0, len(m.Duplicates))
	for f := range m.Duplicates {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
