package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/assayreport/internal/assay"
)

// ErrUnsupportedFormat indicates no reader handles the file extension.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Options controls how a source is read.
type Options struct {
	// Delimiter for delimited text. If 0, it is sniffed from the header line.
	Delimiter rune
	// SheetName selects a worksheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects a worksheet by 1-based position when SheetName is empty.
	SheetIndex int
}

// Raw is a header row plus string cells, before any coercion.
type Raw struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// RawRows keys every row by header. Cells beyond a short row are nil.
// A repeated header keeps the value of its first column.
func (r *Raw) RawRows() []assay.RawRow {
	out := make([]assay.RawRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		rr := make(assay.RawRow, len(r.Headers))
		for i, h := range r.Headers {
			if _, dup := rr[h]; dup {
				continue
			}
			if i < len(row) {
				rr[h] = row[i]
			} else {
				rr[h] = nil
			}
		}
		out = append(out, rr)
	}
	return out
}

// Reader decodes one family of tabular formats.
type Reader interface {
	CanRead(filename string) bool
	Read(name string, data []byte, opt Options) (*Raw, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Read selects a reader based on filename and decodes data.
func Read(name string, data []byte, opt Options) (*Raw, error) {
	for _, r := range registry {
		if r.CanRead(name) {
			raw, err := r.Read(name, data, opt)
			if err != nil {
				return nil, err
			}
			if raw.Name == "" {
				raw.Name = filepath.Base(name)
			}
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

func init() {
	Register(delimitedReader{})
	Register(xlsxReader{})
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func hasSuffix(name string, exts ...string) bool {
	n := strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(n, e) {
			return true
		}
	}
	return false
}
