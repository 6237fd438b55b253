// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. Each batch is inserted with a
// prepared statement inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	sqliteddl "tosql/internal/storage/sqlite/ddl"
	"tosql/internal/transformer"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	pingTimeout    = 5 * time.Second
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or file: URI. When empty, Database names the file.
	DSN      string
	Database string
}

// Path returns the DSN to open: DSN itself, or "<Database>.db".
func (c Config) Path() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	if c.Database != "" {
		return c.Database + ".db"
	}
	return ""
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the database file and returns a Repository plus a
// Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn := cfg.Path()
	if dsn == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN or database name required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer at a time; this also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// CopyFrom inserts rows into table inside a single transaction. Any failing
// row rolls the batch back.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = sqliteddl.QuoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqliteddl.QuoteFQN(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = toCopyVal(v)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a SQL statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// toCopyVal renders temporal values as ISO-8601 text. A time with no clock
// part is written as a bare date.
func toCopyVal(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(dateLayout)
		}
		return x.Format(dateTimeLayout)
	case transformer.TimeOfDay:
		return x.String()
	default:
		return v
	}
}
