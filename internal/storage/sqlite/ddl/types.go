// Package ddl provides SQLite-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// SQLite has type affinity rather than strict types, so dates and times are
// declared TEXT and stored as ISO-8601 strings.
package ddl

import "tosql/internal/infer"

// MapType maps a logical column type onto a SQLite declared type.
func MapType(t infer.Type) string {
	switch t {
	case infer.Integer, infer.BigInt:
		return "INTEGER"
	case infer.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}
