package csvparser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// DefaultMaxRows caps the number of data rows read from one file.
const DefaultMaxRows = 1000

var (
	ErrEmptyHeader = errors.New("csv header row is empty")
	ErrNoRows      = errors.New("csv must contain at least one data row")
	ErrTooManyRows = errors.New("csv contains more data rows than allowed")
)

// Table is a parsed spreadsheet export: header names plus one map per row.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// ParseRows parses a CSV with a header row. Values are trimmed; rows whose
// field count differs from the header are skipped. Reading more than maxRows
// data rows is an error.
func ParseRows(r io.Reader, maxRows int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyHeader
		}
		return nil, err
	}
	normalized := make([]string, len(headers))
	empty := true
	for i, h := range headers {
		// Excel 导出的 UTF-8 文件可能带 BOM
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		normalized[i] = h
		if h != "" {
			empty = false
		}
	}
	if empty {
		return nil, ErrEmptyHeader
	}

	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}
		if len(rows) == maxRows {
			return nil, ErrTooManyRows
		}

		row := make(map[string]string, len(headers))
		for i, key := range normalized {
			if key == "" {
				continue
			}
			row[key] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return &Table{Headers: normalized, Rows: rows}, nil
}
