package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assayreport/internal/aggregate"
)

// Sheet names written by EncodeXLSX.
const (
	SheetRecords    = "Records"
	SheetLocalities = "Localities"
	SheetBoreholes  = "Boreholes"
	SheetHistogram  = "Histogram"
)

// XLSXContentType is the MIME type of a workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EncodeXLSX renders the bundle as a workbook with one sheet per view.
// Grade cells are filled with their bucket colour.
func EncodeXLSX(b *Bundle) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetRecords); err != nil {
		return nil, err
	}
	for _, s := range []string{SheetLocalities, SheetBoreholes, SheetHistogram} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s, err)
		}
	}
	fills := newFillCache(f)

	recHeaders := []interface{}{"Borehole", "Locality", "Sample", "From (m)", "To (m)", "Mid (m)", "Mn (%)", "Fe (%)", "Bucket", "Suspect"}
	if err := writeHeader(f, SheetRecords, recHeaders); err != nil {
		return nil, err
	}
	for i, r := range b.Records {
		row := i + 2
		var fe interface{}
		if r.HasIron {
			fe = r.Iron
		}
		vals := []interface{}{r.BoreholeID, r.Locality, r.SampleID, r.DepthFrom, r.DepthTo, r.DepthMid, r.Grade, fe, r.Bucket, r.Suspect}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetRecords, cell, &vals); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
		if err := fills.apply(SheetRecords, fmt.Sprintf("G%d", row), r.Color); err != nil {
			return nil, err
		}
	}

	if err := writeSummaries(f, SheetLocalities, b.Localities); err != nil {
		return nil, err
	}
	if err := writeSummaries(f, SheetBoreholes, b.Boreholes); err != nil {
		return nil, err
	}

	if err := writeHeader(f, SheetHistogram, []interface{}{"Range (%)", "Lower", "Upper", "Count", "Bucket"}); err != nil {
		return nil, err
	}
	for i, h := range b.Histogram {
		row := i + 2
		vals := []interface{}{h.Label, h.Lower, h.Upper, h.Count, h.Bucket}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetHistogram, cell, &vals); err != nil {
			return nil, fmt.Errorf("write histogram %d: %w", i, err)
		}
		if err := fills.apply(SheetHistogram, fmt.Sprintf("A%d", row), h.Color); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", last, 14)
}

func writeSummaries(f *excelize.File, sheet string, gs []aggregate.GroupSummary) error {
	if err := writeHeader(f, sheet, []interface{}{"Key", "Locality", "Samples", "Total", "Mean (%)", "Min (%)", "Max (%)", "Fe mean (%)", "Mn/Fe", "Boreholes"}); err != nil {
		return err
	}
	for i, g := range gs {
		var fe, ratio interface{}
		if g.HasIron {
			fe, ratio = g.MeanIron, g.Ratio
		}
		vals := []interface{}{g.Key, g.Locality(), g.Count, g.Total, g.Mean, g.Min, g.Max, fe, ratio, g.Boreholes}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

// fillCache creates one solid-fill style per colour.
type fillCache struct {
	f      *excelize.File
	styles map[string]int
}

func newFillCache(f *excelize.File) *fillCache {
	return &fillCache{f: f, styles: map[string]int{}}
}

func (c *fillCache) apply(sheet, cell, color string) error {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if color == "" {
		return nil
	}
	id, ok := c.styles[color]
	if !ok {
		var err error
		id, err = c.f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("style %s: %w", color, err)
		}
		c.styles[color] = id
	}
	return c.f.SetCellStyle(sheet, cell, cell, id)
}
