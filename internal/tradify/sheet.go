// Package tradify reads quote exports from Tradify (CSV or XLSX) and turns
// their accepted line items into pricing observations.
package tradify

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers used by the Tradify quote export.
const (
	ColumnQuoteNo     = "Quote No"
	ColumnDescription = "Line Description"
	ColumnStatus      = "Status"
	ColumnQuantity    = "Line Quantity"
	ColumnUnitPrice   = "Line Unit Price"
	ColumnAmount      = "Line Amount"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{ColumnQuoteNo, ColumnDescription, ColumnStatus}

var (
	// ErrEmptyFile is returned when there is no header plus data row.
	ErrEmptyFile = errors.New("empty file: expected a header row and at least one data row")
	// ErrMissingColumns is returned when a required header is absent.
	ErrMissingColumns = errors.New("missing columns")
)

// Sheet is a parsed export: a header index and the data rows.
type Sheet struct {
	Header  []string
	Rows    [][]string
	columns map[string]int
}

// Parse reads CSV content. Fields may be wrapped in double quotes, and a
// comma only separates fields outside quotes.
func Parse(content string) (*Sheet, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	var lines [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, splitLine(line))
	}
	return newSheet(lines)
}

// splitLine splits one CSV line on commas outside double quotes.
// Quote characters toggle quoting and are not kept.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ParseXLSX reads the first worksheet of an XLSX export.
func ParseXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}

	lines := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		lines = append(lines, cells)
	}
	return newSheet(lines)
}

func newSheet(lines [][]string) (*Sheet, error) {
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	s := &Sheet{
		Header:  lines[0],
		Rows:    lines[1:],
		columns: make(map[string]int, len(lines[0])),
	}
	for i, h := range lines[0] {
		h = strings.TrimSpace(h)
		if _, dup := s.columns[h]; !dup {
			s.columns[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !s.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return s, nil
}

// Has reports whether the header contains column.
func (s *Sheet) Has(column string) bool {
	_, ok := s.columns[column]
	return ok
}

// Value returns the cell of row under column, or "" when absent.
func (s *Sheet) Value(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
