// Package ddl contains MSSQL-specific helpers for generating DDL.
//
// Logical types map onto SQL Server types; text columns use NVARCHAR(MAX)
// so any sheet content fits.
package ddl

import "tosql/internal/infer"

// MapType maps a logical column type into a SQL Server column type. Unknown
// types fall back to NVARCHAR(MAX).
func MapType(t infer.Type) string {
	switch t {
	case infer.Integer:
		return "INT"
	case infer.BigInt:
		return "BIGINT"
	case infer.Real:
		return "REAL"
	case infer.Date:
		return "DATE"
	case infer.DateTime:
		return "DATETIME2"
	case infer.Time:
		return "TIME"
	default:
		return "NVARCHAR(MAX)"
	}
}
