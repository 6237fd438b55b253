// Package table holds the RawTable model shared by the spreadsheet and
// delimited-text readers: a header row plus data rows of nullable strings,
// all the same width.
package table

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptySource matches any *EmptySourceError via errors.Is.
var ErrEmptySource = errors.New("empty source")

// EmptySourceError reports a worksheet or file that yields no header, no
// columns, or no cell with a value in it.
type EmptySourceError struct {
	Name string
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("table %q: source has no rows or columns", e.Name)
}

func (e *EmptySourceError) Is(target error) bool { return target == ErrEmptySource }

// RawTable is one extracted table before type inference. Data[0] is the
// header; every row in Data has len(Data[0]) entries.
type RawTable struct {
	Name string
	Data [][]sql.NullString
}

// Header returns the header row.
func (t RawTable) Header() []sql.NullString {
	if len(t.Data) == 0 {
		return nil
	}
	return t.Data[0]
}

// Records returns the data rows without the header.
func (t RawTable) Records() [][]sql.NullString {
	if len(t.Data) < 2 {
		return nil
	}
	return t.Data[1:]
}

// Width is the number of columns.
func (t RawTable) Width() int { return len(t.Header()) }

// Column returns the values at position i across all data rows, header
// excluded, in row order.
func (t RawTable) Column(i int) []sql.NullString {
	recs := t.Records()
	out := make([]sql.NullString, len(recs))
	for r, rec := range recs {
		out[r] = rec[i]
	}
	return out
}

// New builds a RawTable from a header and string records. Short records are
// padded with nulls; a record wider than the header is an error. An empty
// header, or a table with no non-blank value anywhere, yields
// *EmptySourceError.
func New(name string, header []string, records [][]string) (RawTable, error) {
	if len(header) == 0 {
		return RawTable{}, &EmptySourceError{Name: name}
	}
	width := len(header)
	data := make([][]sql.NullString, 0, len(records)+1)
	data = append(data, valid(header, width))
	for i, rec := range records {
		if len(rec) > width {
			return RawTable{}, fmt.Errorf("table %q: record %d has %d fields, header has %d", name, i+1, len(rec), width)
		}
		data = append(data, valid(rec, width))
	}
	t := RawTable{Name: name, Data: data}
	if t.blank() {
		return RawTable{}, &EmptySourceError{Name: name}
	}
	return t, nil
}

// FromGrid converts an extracted grid (first row = header) into a RawTable.
// nil stays null; strings are kept as-is; numbers use the shortest decimal
// form that round-trips; booleans become "true"/"false".
func FromGrid(name string, grid [][]any) (RawTable, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return RawTable{}, &EmptySourceError{Name: name}
	}
	width := len(grid[0])
	data := make([][]sql.NullString, len(grid))
	for r, row := range grid {
		if len(row) != width {
			return RawTable{}, fmt.Errorf("table %q: grid row %d has %d cells, want %d", name, r, len(row), width)
		}
		out := make([]sql.NullString, width)
		for c, v := range row {
			s, err := stringify(v)
			if err != nil {
				return RawTable{}, fmt.Errorf("table %q: row %d column %d: %w", name, r, c, err)
			}
			out[c] = s
		}
		data[r] = out
	}
	t := RawTable{Name: name, Data: data}
	if t.blank() {
		return RawTable{}, &EmptySourceError{Name: name}
	}
	return t, nil
}

// IsBlank reports whether v carries no usable value: null, empty, or only
// whitespace.
func IsBlank(v sql.NullString) bool {
	return !v.Valid || strings.TrimSpace(v.String) == ""
}

func (t RawTable) blank() bool {
	for _, row := range t.Data {
		for _, v := range row {
			if !IsBlank(v) {
				return false
			}
		}
	}
	return true
}

func valid(rec []string, width int) []sql.NullString {
	out := make([]sql.NullString, width)
	for i, s := range rec {
		out[i] = sql.NullString{String: s, Valid: true}
	}
	return out
}

func stringify(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: x, Valid: true}, nil
	case float64:
		return sql.NullString{String: strconv.FormatFloat(x, 'f', -1, 64), Valid: true}, nil
	case bool:
		return sql.NullString{String: strconv.FormatBool(x), Valid: true}, nil
	default:
		return sql.NullString{}, fmt.Errorf("unsupported grid value %T", v)
	}
}
