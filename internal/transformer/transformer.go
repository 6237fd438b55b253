// Package transformer converts extracted string rows into database-ready rows
// ([]any) using the column types chosen by inference.
//
// A per-column coercion plan is compiled once per table. Blank values become
// NULL; everything else is parsed into the Go type the storage drivers expect
// for the logical type:
//
//	TEXT              string
//	INTEGER, BIGINT   int64 (INTEGER is range-checked to 32 bits)
//	REAL              float64
//	DATE, DATETIME    time.Time (UTC)
//	TIME              TimeOfDay
//
// Unlike a lenient ETL transform, a value that fails to parse is not dropped:
// the first failure stops the table with a *RowError.
package transformer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tosql/internal/infer"
	"tosql/internal/table"
)

// ErrCoerce matches any *RowError.
var ErrCoerce = errors.New("value does not fit column type")

// RowError reports a value that could not be converted. Row is the 1-based
// data row (header excluded).
type RowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d column %s: value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Is(target error) bool { return target == ErrCoerce }

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute) }

// Duration is the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

type coerceFn func(s string) (any, error)

// Plan is a compiled per-column coercion plan.
type Plan struct {
	columns []string
	fns     []coerceFn
}

// Compile builds a plan for columns with the given logical types.
func Compile(columns []string, types []infer.Type) (Plan, error) {
	if len(columns) != len(types) {
		return Plan{}, fmt.Errorf("transformer: %d columns but %d types", len(columns), len(types))
	}
	fns := make([]coerceFn, len(types))
	for i, t := range types {
		fn, ok := coercers[t]
		if !ok {
			return Plan{}, fmt.Errorf("transformer: column %s: unknown type %q", columns[i], t)
		}
		fns[i] = fn
	}
	return Plan{columns: columns, fns: fns}, nil
}

// Row converts one record. rowNum is used for error attribution only.
func (p Plan) Row(rowNum int, rec []sql.NullString) ([]any, error) {
	if len(rec) != len(p.fns) {
		return nil, &RowError{Row: rowNum, Err: fmt.Errorf("record has %d fields, want %d", len(rec), len(p.fns))}
	}
	out := make([]any, len(rec))
	for i, v := range rec {
		if table.IsBlank(v) {
			continue
		}
		val, err := p.fns[i](v.String)
		if err != nil {
			return nil, &RowError{Row: rowNum, Column: p.columns[i], Value: v.String, Err: err}
		}
		out[i] = val
	}
	return out, nil
}

// Stream coerces records in order and sends them to out, closing out when
// done. It stops at the first conversion error or when ctx is canceled.
func Stream(ctx context.Context, p Plan, records [][]sql.NullString, out chan<- []any) error {
	defer close(out)
	for i, rec := range records {
		row, err := p.Row(i+1, rec)
		if err != nil {
			return err
		}
		select {
		case out <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

var coercers = map[infer.Type]coerceFn{
	infer.Text:     func(s string) (any, error) { return s, nil },
	infer.Integer:  parseInt32,
	infer.BigInt:   parseInt64,
	infer.Real:     parseReal,
	infer.Date:     parseDate,
	infer.DateTime: parseDateTime,
	infer.Time:     parseTimeOfDay,
}

func parseInt64(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func parseInt32(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("out of range for INTEGER")
	}
	return n, nil
}

func parseReal(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func dateLayout(s string) string {
	if len(s) >= 10 && s[4] == '-' {
		return "2006-01-02"
	}
	return "20060102"
}

func parseDate(s string) (any, error) {
	return time.Parse(dateLayout(s), s)
}

// parseDateTime accepts the shapes the DATETIME rule admits: either date form,
// 'T' or ' ', a 1-2 digit hour, optional seconds, optional trailing Z.
func parseDateTime(s string) (any, error) {
	date := dateLayout(s)
	if len(s) <= len(date) {
		return nil, fmt.Errorf("missing time part")
	}
	var b strings.Builder
	b.WriteString(date)
	b.WriteByte(s[len(date)])
	b.WriteString("15:04")
	rest := strings.TrimSuffix(s[len(date)+1:], "Z")
	if strings.Count(rest, ":") == 2 {
		b.WriteString(":05")
	}
	if strings.HasSuffix(s, "Z") {
		b.WriteByte('Z')
	}
	return time.Parse(b.String(), s)
}

func parseTimeOfDay(s string) (any, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("missing ':'")
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return nil, err
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return nil, err
	}
	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("not a valid time of day")
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}
