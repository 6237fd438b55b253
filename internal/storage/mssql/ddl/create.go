package ddl

import (
	"fmt"
	"strings"

	gddl "tosql/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates the table if it
// does not already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    [col2] TYPE
//	  );
//	END;
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, hence the OBJECT_ID guard.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.Columns(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql ddl: %w", err)
	}

	quoted := QuoteFQN(fqn)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(quoted, "'", "''"),
		quoted,
		strings.Join(cols, ",\n    "),
	), nil
}

// QuoteIdent quotes one identifier segment with brackets, escaping ']'.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes each dotted segment: "dbo.Users" -> [dbo].[Users].
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(fqn, QuoteIdent)
}
