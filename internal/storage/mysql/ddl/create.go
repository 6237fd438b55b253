package ddl

import (
	"fmt"
	"strings"

	gddl "tosql/internal/ddl"
)

// BuildCreateTableSQL returns
//
//	CREATE TABLE IF NOT EXISTS `table` (
//	  `col1` TYPE [NOT NULL],
//	  `col2` TYPE
//	);
//
// A dotted FQN is read as `database`.`table`.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.Columns(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mysql ddl: %w", err)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes each dotted segment.
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(fqn, QuoteIdent)
}
