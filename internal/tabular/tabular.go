// Package tabular decodes uploaded CSV and spreadsheet files into rows keyed
// by normalized column names.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for upload decoding failures.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no data rows")
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9_]`)
)

// Table is a decoded tabular file. Column names are normalized; rows map
// normalized column name to the raw cell value.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// NormalizeColumn lowercases a header, turns whitespace runs into single
// underscores, and strips every remaining non-alphanumeric character.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = reWhitespace.ReplaceAllString(name, "_")
	return reNonAlnum.ReplaceAllString(name, "")
}

// Parse decodes a file by extension: .csv, .xls, or .xlsx. Anything else
// fails with ErrUnsupportedFormat.
func Parse(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xls", ".xlsx":
		return parseSpreadsheet(r)
	default:
		return nil, fmt.Errorf("%w: %s (only CSV, XLS, XLSX allowed)", ErrUnsupportedFormat, filename)
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return fromRecords(records)
}

func parseSpreadsheet(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	columns := make([]string, len(records[0]))
	for i, h := range records[0] {
		columns[i] = NormalizeColumn(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// MissingColumns returns the required columns absent from the table, in the
// required order.
func (t *Table) MissingColumns(required []string) []string {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}

	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// TextContent joins every cell of the table's text-typed columns into one
// string, row-major. A column counts as text-typed when at least one
// non-empty cell does not parse as a number.
func (t *Table) TextContent() string {
	textCols := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if t.isTextColumn(col) {
			textCols = append(textCols, col)
		}
	}

	var b strings.Builder
	for _, row := range t.Rows {
		for _, col := range textCols {
			if v := row[col]; v != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(v)
			}
		}
	}
	return b.String()
}

func (t *Table) isTextColumn(col string) bool {
	for _, row := range t.Rows {
		v := row[col]
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return true
		}
	}
	return false
}
