package ddl

import "tosql/internal/infer"

// ColumnDef describes one column of a table to create.
//
// Fields:
//   - Name: sanitized, lower-cased column name (unquoted; renderers quote)
//   - Type: logical type from inference
//   - SQLType: dialect type; filled by a dialect MapType, or Type's name
//   - Nullable: whether NULL is allowed
//   - Header: the original header text, kept for diagnostics
type ColumnDef struct {
	Name     string
	Type     infer.Type
	SQLType  string
	Nullable bool
	Header   string
}

// TableDef holds the table name (FQN) and its columns in source order. The
// FQN may be dotted ("schema.table"); renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Types returns the logical column types in order.
func (t TableDef) Types() []infer.Type {
	out := make([]infer.Type, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Type
	}
	return out
}

// WithSQLTypes returns a copy of t whose SQLType fields come from mapType.
func (t TableDef) WithSQLTypes(mapType func(infer.Type) string) TableDef {
	cols := make([]ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		c.SQLType = mapType(c.Type)
		cols[i] = c
	}
	return TableDef{FQN: t.FQN, Columns: cols}
}
