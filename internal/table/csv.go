package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type delimitedReader struct{}

func (delimitedReader) CanRead(filename string) bool {
	return hasSuffix(filename, ".csv", ".tsv", ".txt")
}

func (delimitedReader) Read(name string, data []byte, opt Options) (*Raw, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, data)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	raw := &Raw{}
	line := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if blank(rec) {
			continue
		}
		if raw.Headers == nil {
			raw.Headers = append([]string(nil), rec...)
			continue
		}
		raw.Rows = append(raw.Rows, append([]string(nil), rec...))
	}
	if raw.Headers == nil {
		return nil, fmt.Errorf("read header: %s has no header row", name)
	}
	return raw, nil
}

// sniffDelimiter picks the most frequent of tab, ';' and ',' on the first non-empty line.
// A .tsv extension always means tab.
func sniffDelimiter(name string, data []byte) rune {
	if hasSuffix(name, ".tsv") {
		return '\t'
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		first := sc.Text()
		if strings.TrimSpace(first) == "" {
			continue
		}
		best, bestN := ',', 0
		for _, d := range []rune{'\t', ';', ','} {
			if n := strings.Count(first, string(d)); n > bestN {
				best, bestN = d, n
			}
		}
		return best
	}
	return ','
}
