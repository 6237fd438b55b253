package infer

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tosql/internal/table"
)

// inferStrings is InferColumnType over plain strings; "" counts as blank.
func inferStrings(values ...string) Column {
	ns := make([]sql.NullString, len(values))
	for i, s := range values {
		ns[i] = sql.NullString{String: s, Valid: true}
	}
	return InferColumnType(ns)
}

// matches reports whether s belongs to the grammar of typ. Text matches
// everything.
func matches(typ Type, s string) bool {
	for _, r := range rules {
		if r.typ == typ {
			return r.re.MatchString(s)
		}
	}
	return typ == Text
}

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		want     Type
		nullable bool
	}{
		{"integers", []string{"1", "2", "3"}, Integer, false},
		{"integers with blank", []string{"1", "2", ""}, Integer, true},
		{"dates", []string{"2016-01-18", "2016-02-01"}, Date, false},
		{"compact dates", []string{"20160118", "20160201"}, Date, false},
		{"reals", []string{"1.5", "2", "3.25"}, Real, false},
		{"mixed text", []string{"abc", "123"}, Text, false},
		{"datetimes", []string{"2016-01-18T01:45:53Z", "2016-01-18 15:10:20", "2016-01-18 4:05"}, DateTime, false},
		{"bigint", []string{"12345678901", "-1"}, BigInt, false},
		{"too long for bigint", []string{"12345678901234567890"}, Real, false},
		{"real forms", []string{"123", ".45", "123.45", "123.", "-0.5"}, Real, false},
		{"bare dash", []string{"-"}, Text, false},
		{"bare dot", []string{"."}, Text, false},
		{"time", []string{"23:54", "01:45", "4:90"}, Time, false},
		{"time hour past 23", []string{"35:00", "99:99"}, Time, false},
		{"time three-digit hour", []string{"123:00"}, Text, false},
		{"time one-digit minute", []string{"12:5"}, Text, false},
		{"all blank", []string{"", "  ", "\t"}, Text, true},
		{"no samples", nil, Text, true},
		{"mixed date separators", []string{"2016-0118"}, Text, false},
		{"date with other half dash", []string{"201601-18"}, Text, false},
		{"padded integer", []string{" 12"}, Text, false},
		{"date and integer", []string{"20160118", "7"}, Integer, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := inferStrings(tt.values...)
			assert.Equal(t, tt.want, got.Type, "values %q", tt.values)
			assert.Equal(t, tt.nullable, got.Nullable, "nullable for %q", tt.values)
		})
	}
}

func TestNullsCountAsBlank(t *testing.T) {
	t.Parallel()

	got := InferColumnType([]sql.NullString{
		{String: "1", Valid: true},
		{},
		{String: "3", Valid: true},
	})
	assert.Equal(t, Column{Type: Integer, Nullable: true, Samples: 3, NonBlank: 2}, got)
}

func TestRulesKeepPrecedence(t *testing.T) {
	t.Parallel()

	order := make([]Type, len(rules))
	for i, r := range rules {
		order[i] = r.typ
	}
	assert.Equal(t, []Type{DateTime, Date, Integer, BigInt, Real, Time}, order)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, matches(Integer, "-100"))
	assert.False(t, matches(Integer, "99999999999"))
	assert.True(t, matches(Time, "35:00"))
	assert.True(t, matches(Text, "anything"))
	assert.False(t, matches(Type("BLOB"), "x"))
}

func TestTableEndToEnd(t *testing.T) {
	t.Parallel()

	tbl, err := table.New("people", []string{"id", "name"}, [][]string{
		{"1", "Alice"}, {"2", "Bob"}, {"3", "Carol"},
	})
	require.NoError(t, err)

	cols := Table(tbl)
	require.Len(t, cols, 2)
	assert.Equal(t, Integer, cols[0].Type)
	assert.False(t, cols[0].Nullable)
	assert.Equal(t, Text, cols[1].Type)
	assert.False(t, cols[1].Nullable)
}
