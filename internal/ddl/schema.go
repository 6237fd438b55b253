package ddl

import (
	"errors"
	"fmt"
	"strconv"

	"tosql/internal/ident"
	"tosql/internal/infer"
	"tosql/internal/table"
)

// ErrIdentifierCollision matches any *IdentifierCollisionError.
var ErrIdentifierCollision = errors.New("identifier collision")

// IdentifierCollisionError reports two distinct inputs that sanitize to the
// same SQL name. Table is empty when the collision is between table names.
type IdentifierCollisionError struct {
	Table  string
	Name   string
	First  string
	Second string
}

func (e *IdentifierCollisionError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("ddl: tables %q and %q both sanitize to %q", e.First, e.Second, e.Name)
	}
	return fmt.Sprintf("ddl: table %s: columns %q and %q both sanitize to %q", e.Table, e.First, e.Second, e.Name)
}

func (e *IdentifierCollisionError) Is(target error) bool { return target == ErrIdentifierCollision }

// Options tunes name derivation.
type Options struct {
	// FoldAccents strips diacritics before sanitizing names.
	FoldAccents bool
}

// TableName is the SQL name for a raw table name.
func TableName(raw string, opts Options) (string, error) {
	name, err := ident.SQLName(opts.prepare(raw))
	if err != nil {
		return "", fmt.Errorf("table %q: %w", raw, err)
	}
	return name, nil
}

// FromRawTable sanitizes names and infers a type per column.
//
// A blank header cell at position i is named column_<i>. Column names are
// lower-cased; two headers that end up equal are an
// *IdentifierCollisionError. SQLType is left empty for the dialect to fill.
func FromRawTable(t table.RawTable, opts Options) (TableDef, error) {
	fqn, err := TableName(t.Name, opts)
	if err != nil {
		return TableDef{}, err
	}

	header := t.Header()
	cols := make([]ColumnDef, len(header))
	seen := make(map[string]string, len(header))
	for i, h := range header {
		raw := h.String
		if table.IsBlank(h) {
			raw = "column_" + strconv.Itoa(i)
		}
		name, err := ident.SQLName(opts.prepare(raw))
		if err != nil {
			return TableDef{}, fmt.Errorf("table %s: column %d (%q): %w", fqn, i, raw, err)
		}
		if first, dup := seen[name]; dup {
			return TableDef{}, &IdentifierCollisionError{Table: fqn, Name: name, First: first, Second: raw}
		}
		seen[name] = raw

		inf := infer.InferColumnType(t.Column(i))
		cols[i] = ColumnDef{
			Name:     name,
			Type:     inf.Type,
			Nullable: inf.Nullable,
			Header:   raw,
		}
	}
	return TableDef{FQN: fqn, Columns: cols}, nil
}

// CheckTableNames fails on the first pair of tables sharing an FQN. raw holds
// the source names in the same order as defs.
func CheckTableNames(defs []TableDef, raw []string) error {
	seen := make(map[string]string, len(defs))
	for i, d := range defs {
		if first, dup := seen[d.FQN]; dup {
			return &IdentifierCollisionError{Name: d.FQN, First: first, Second: raw[i]}
		}
		seen[d.FQN] = raw[i]
	}
	return nil
}

func (o Options) prepare(s string) string {
	if o.FoldAccents {
		return ident.FoldAccents(s)
	}
	return s
}
