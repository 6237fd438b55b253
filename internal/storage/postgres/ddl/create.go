package ddl

import (
	"fmt"
	"strings"

	gddl "tosql/internal/ddl"
)

// BuildCreateTableSQL builds a Postgres CREATE TABLE IF NOT EXISTS statement
// for t.
//
// Rules:
//   - t.FQN must be non-empty; each dotted segment is quoted.
//   - Each column must have a non-empty Name and SQLType.
//   - Identifiers are double-quoted; embedded double-quotes are escaped.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.Columns(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("postgres ddl: %w", err)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent quotes a single identifier segment:
//
//	QuoteIdent(`order_id`)   => `"order_id"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name like "public.users" to
// `"public"."users"`. Empty segments are ignored.
func QuoteFQN(f string) string {
	return gddl.QuoteFQN(f, QuoteIdent)
}
