package pipeline

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zeebo/xxh3"

	"tosql/internal/ddl"
	"tosql/internal/storage"
)

// Describe writes what a load would create: one line per table with its row
// count and schema fingerprint, then one line per column. Types come from
// kind's dialect when one is registered, otherwise the logical names.
func Describe(w io.Writer, kind string, sources []Source) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tCOLUMN\tTYPE\tNULL\tROWS\tSCHEMA")
	for _, src := range sources {
		def := src.Def
		if resolved, err := storage.ResolveTypes(kind, def); err == nil {
			def = resolved
		}
		fmt.Fprintf(tw, "%s\t\t\t\t%d\t%016x\n", def.FQN, src.Rows(), Fingerprint(def))
		for _, c := range def.Columns {
			null := "NULL"
			if !c.Nullable {
				null = "NOT NULL"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t\n", def.FQN, c.Name, sqlType(c), null)
		}
	}
	return tw.Flush()
}

// Fingerprint hashes the table name and the ordered (name, type, nullability)
// of its columns. Equal schemas give equal fingerprints across runs; header
// text and dialect types do not participate.
func Fingerprint(def ddl.TableDef) uint64 {
	var sb strings.Builder
	sb.WriteString(def.FQN)
	for _, c := range def.Columns {
		fmt.Fprintf(&sb, "\n%s %s %t", c.Name, c.Type, c.Nullable)
	}
	return xxh3.HashString(sb.String())
}

func sqlType(c ddl.ColumnDef) string {
	if c.SQLType != "" {
		return c.SQLType
	}
	return string(c.Type)
}
