package frame

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Row is one tabular row: column name to cell value.
// Cells are strings; absent keys mean the column has no value in this row.
type Row map[string]string

// Clone returns a copy of the row that shares no storage with the original.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Frame is one tabular unit extracted from a source file: one CSV document,
// one workbook sheet, or one parsed JSON document.
type Frame struct {
	// Name identifies the frame within its source file (sheet name, or the
	// filename stem for single-frame formats).
	Name string

	// Columns lists the headers in source order. Every key present in any
	// row must appear here.
	Columns []string

	Rows []Row
}

// HasColumn reports whether the frame declares the named column.
func (f *Frame) HasColumn(name string) bool {
	return slices.Contains(f.Columns, name)
}

// AddColumn appends a column to the header list if not already declared.
func (f *Frame) AddColumn(name string) {
	if !f.HasColumn(name) {
		f.Columns = append(f.Columns, name)
	}
}

// SetAll assigns the same value to the named column on every row,
// declaring the column if needed.
func (f *Frame) SetAll(name, value string) {
	f.AddColumn(name)
	for _, row := range f.Rows {
		row[name] = value
	}
}

// UnionColumns keeps the existing header order and appends columns first
// seen in the added list.
func UnionColumns(existing, added []string) []string {
	out := slices.Clone(existing)
	for _, col := range added {
		if !slices.Contains(out, col) {
			out = append(out, col)
		}
	}
	return out
}

// CellString converts a scalar decoded from JSON, YAML, or a workbook cell
// into its canonical cell representation. Floats format with the shortest
// representation that round-trips; nil becomes the empty cell.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return FormatNumber(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatNumber renders a float cell. Integral values drop the fraction so
// identity columns read naturally ("3", not "3.000000").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseNumber parses a numeric cell.
func ParseNumber(cell string) (float64, error) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	return v, nil
}
