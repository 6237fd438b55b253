// Package ddl renders MySQL CREATE TABLE statements from ddl.TableDef.
package ddl

import "tosql/internal/infer"

// MapType maps a logical column type into a MySQL column type. TEXT columns
// become LONGTEXT since sheet cells have no length bound.
func MapType(t infer.Type) string {
	switch t {
	case infer.Integer:
		return "INT"
	case infer.BigInt:
		return "BIGINT"
	case infer.Real:
		return "DOUBLE"
	case infer.Date:
		return "DATE"
	case infer.DateTime:
		return "DATETIME"
	case infer.Time:
		return "TIME"
	default:
		return "LONGTEXT"
	}
}
