// Package infer classifies a column's sample values into one SQL type.
//
// Candidate types are tried in a fixed order and the first whose pattern
// matches every non-blank sample wins. Narrow grammars come first: DATE
// strings like 20160118 are also valid INTEGERs, and every INTEGER is a REAL.
// Do not reorder the rule list.
package infer

import (
	"database/sql"
	"regexp"

	"tosql/internal/table"
)

// Type is a logical column type. Dialect packages map it to a concrete SQL
// type name.
type Type string

const (
	Text     Type = "TEXT"
	Integer  Type = "INTEGER"
	BigInt   Type = "BIGINT"
	Real     Type = "REAL"
	Date     Type = "DATE"
	DateTime Type = "DATETIME"
	Time     Type = "TIME"
)

type rule struct {
	typ Type
	re  *regexp.Regexp
}

// The date part allows "2016-01-18" and "20160118" but not a mix of the two.
const datePart = `[12]\d{3}(?:-[01]\d-[0123]\d|[01]\d[0123]\d)`

var rules = []rule{
	{DateTime, regexp.MustCompile(`^` + datePart + `[T ][012]?\d:[0-5]\d(?::[0-5]\d)?Z?$`)},
	{Date, regexp.MustCompile(`^` + datePart + `$`)},
	{Integer, regexp.MustCompile(`^-?\d{1,10}$`)},
	{BigInt, regexp.MustCompile(`^-?\d{1,19}$`)},
	{Real, regexp.MustCompile(`^-?(?:\d+|\.\d+|\d+\.\d*)$`)},
	// Hour and minute are bounded by digit count only: "4:90" and "35:00" match.
	{Time, regexp.MustCompile(`^\d{1,2}:\d\d$`)},
}

// Column is the inference result for one column.
type Column struct {
	Type     Type
	Nullable bool
	// Samples and NonBlank count the values seen, header excluded.
	Samples  int
	NonBlank int
}

// InferColumnType infers the type and nullability of one column.
//
// A value is blank when it is null or only whitespace. With no non-blank
// values the column is nullable TEXT. The column is NOT NULL only when every
// value is non-blank.
func InferColumnType(values []sql.NullString) Column {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if !table.IsBlank(v) {
			present = append(present, v.String)
		}
	}

	col := Column{
		Type:     Text,
		Nullable: len(present) != len(values),
		Samples:  len(values),
		NonBlank: len(present),
	}
	if len(present) == 0 {
		col.Nullable = true
		return col
	}
	for _, r := range rules {
		if matchesAll(r.re, present) {
			col.Type = r.typ
			break
		}
	}
	return col
}

// Table infers every column of t in header order.
func Table(t table.RawTable) []Column {
	out := make([]Column, t.Width())
	for i := range out {
		out[i] = InferColumnType(t.Column(i))
	}
	return out
}

func matchesAll(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if !re.MatchString(v) {
			return false
		}
	}
	return true
}
