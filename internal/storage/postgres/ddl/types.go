// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "tosql/internal/infer"

// MapType maps a logical column type to a Postgres type.
//
//	TEXT     -> TEXT
//	INTEGER  -> INTEGER
//	BIGINT   -> BIGINT
//	REAL     -> REAL
//	DATE     -> DATE
//	DATETIME -> TIMESTAMP
//	TIME     -> TIME
//
// Anything else maps to TEXT.
func MapType(t infer.Type) string {
	switch t {
	case infer.Integer:
		return "INTEGER"
	case infer.BigInt:
		return "BIGINT"
	case infer.Real:
		return "REAL"
	case infer.Date:
		return "DATE"
	case infer.DateTime:
		return "TIMESTAMP"
	case infer.Time:
		return "TIME"
	default:
		return "TEXT"
	}
}
