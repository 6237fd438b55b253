// Package sheet decodes spreadsheet worksheets into dense grids.
//
// A worksheet is modeled the way workbook formats store it: a declared range
// such as "A1:D20" plus a sparse map from encoded cell address to cell record.
// ReadTable walks the range and produces a rectangular grid of formatted
// values, leaving nil where the map has no entry.
//
// Addresses use the conventional spreadsheet notation: one or more uppercase
// column letters (bijective base-26, A=1) followed by a one-based row number.
// In Go, coordinates are always zero-based.
package sheet

import "strconv"

// MaxColumns and MaxRows bound a worksheet, matching the limits of the xlsx
// format ("XFD" and row 1048576).
const (
	MaxColumns = 16384
	MaxRows    = 1048576
)

// CellAddress is a zero-based (row, column) coordinate.
type CellAddress struct {
	Row    int
	Column int
}

// String returns the encoded form of a, e.g. {Row: 2, Column: 1} -> "B3".
func (a CellAddress) String() string {
	return EncodeColumn(a.Column) + EncodeRow(a.Row)
}

// CellRange is an inclusive rectangle of cells. Start is the top-left corner
// and End the bottom-right one.
type CellRange struct {
	Start CellAddress
	End   CellAddress
}

// Rows returns the number of rows covered by r.
func (r CellRange) Rows() int { return r.End.Row - r.Start.Row + 1 }

// Columns returns the number of columns covered by r.
func (r CellRange) Columns() int { return r.End.Column - r.Start.Column + 1 }

// String returns the encoded range, collapsing single-cell ranges to "A1".
func (r CellRange) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// DecodeRange parses "A1" or "A1:C10" into a CellRange.
//
// A single-cell range yields Start == End. The column-letter run and the
// row-digit run of each address must be non-empty, the column must not pass
// "XFD", the row must be in 1..MaxRows, and the range must be ordered (start <= end on both axes); any other input
// returns a *MalformedRangeError.
func DecodeRange(text string) (CellRange, error) {
	start, rest, ok := decodeAddress(text)
	if !ok {
		return CellRange{}, &MalformedRangeError{Input: text}
	}
	if rest == "" {
		return CellRange{Start: start, End: start}, nil
	}
	if rest[0] != ':' {
		return CellRange{}, &MalformedRangeError{Input: text}
	}
	end, rest, ok := decodeAddress(rest[1:])
	if !ok || rest != "" {
		return CellRange{}, &MalformedRangeError{Input: text}
	}
	if end.Row < start.Row || end.Column < start.Column {
		return CellRange{}, &MalformedRangeError{Input: text}
	}
	return CellRange{Start: start, End: end}, nil
}

// decodeAddress consumes one COLROW address from the front of s and returns
// the remainder.
func decodeAddress(s string) (CellAddress, string, bool) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	col, ok := DecodeColumn(s[:i])
	if !ok {
		return CellAddress{}, s, false
	}

	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return CellAddress{}, s, false
	}
	if j-i > len(strconv.Itoa(MaxRows)) {
		return CellAddress{}, s, false
	}
	row, err := strconv.Atoi(s[i:j])
	if err != nil || row < 1 || row > MaxRows {
		return CellAddress{}, s, false
	}
	return CellAddress{Row: row - 1, Column: col}, s[j:], true
}

// DecodeColumn converts a column-letter run ("A", "AB") to its zero-based
// index. It reports false for an empty run, any byte outside 'A'..'Z', or a
// column past MaxColumns.
func DecodeColumn(letters string) (int, bool) {
	if letters == "" || len(letters) > 3 {
		return 0, false
	}
	idx := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		idx = idx*26 + int(c-'A'+1)
	}
	if idx > MaxColumns {
		return 0, false
	}
	return idx - 1, true
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EncodeColumn converts a zero-based column index to letters using bijective
// base-26: 0 -> "A", 25 -> "Z", 26 -> "AA", 27 -> "AB", 702 -> "AAA".
// Negative indexes encode as "".
func EncodeColumn(index int) string {
	if index < 0 {
		return ""
	}
	var buf [16]byte
	pos := len(buf)
	n := index + 1
	for n > 0 {
		n--
		pos--
		buf[pos] = alphabet[n%26]
		n /= 26
	}
	return string(buf[pos:])
}

// EncodeRow converts a zero-based row index to its one-based decimal form.
func EncodeRow(index int) string {
	return strconv.Itoa(index + 1)
}
