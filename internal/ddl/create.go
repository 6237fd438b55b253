// Package ddl is the backend-agnostic table model: building a TableDef from an
// extracted table and the column clauses every dialect renders from it.
//
// Dialect packages under internal/storage/<kind>/ddl render their own CREATE
// TABLE statements through Columns and QuoteFQN.
package ddl

import (
	"errors"
	"fmt"
	"strings"
)

// Columns validates t and renders one "<name> <type>[ NOT NULL]" clause per
// column, passing names through quote (nil leaves them bare). It returns the
// trimmed FQN. Every column needs a SQLType.
func Columns(t TableDef, quote func(string) string) (string, []string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", nil, errors.New("table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", nil, errors.New("at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", nil, fmt.Errorf("column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", nil, fmt.Errorf("column %s missing SQLType", name)
		}
		if quote != nil {
			name = quote(name)
		}

		clause := name + " " + typ
		if !c.Nullable {
			clause += " NOT NULL"
		}
		cols = append(cols, clause)
	}
	return fqn, cols, nil
}

// QuoteFQN applies quote to every non-empty dotted segment of fqn.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, quote(p))
		}
	}
	return strings.Join(out, ".")
}
