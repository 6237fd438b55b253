package ddl

import (
	"fmt"
	"strings"

	gddl "tosql/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	);
//
// A dotted FQN such as "main.events" has each segment quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.Columns(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("sqlite ddl: %w", err)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent double-quotes id.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes every dotted segment of fqn.
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(fqn, QuoteIdent)
}
