// Package mysql provides a MySQL-backed storage.Repository. Batches are
// written with multi-row INSERT statements inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tosql/internal/storage"
	myddl "tosql/internal/storage/mysql/ddl"
	"tosql/internal/transformer"
)

const (
	errAccessDenied = 1045
	errBadDB        = 1049

	// maxPlaceholders is the server limit on bind parameters per statement.
	maxPlaceholders = 65535
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN      string // go-sql-driver DSN, e.g. user:pw@tcp(host:3306)/db
	Database string // overrides the DSN's database when set
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository connects, pings, and returns a Repository plus a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := openDB(cfg.DSN, cfg.Database, true)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, classify(fmt.Errorf("ping: %w", err))
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// openDB parses dsn and replaces its database with database when override
// is set. An empty override with override=true keeps the DSN's database.
func openDB(dsn, database string, override bool) (*sql.DB, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, storage.Permanent(fmt.Errorf("mysql dsn: %w", err))
	}
	switch {
	case !override:
		mcfg.DBName = ""
	case database != "":
		mcfg.DBName = database
	}
	conn, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, storage.Permanent(fmt.Errorf("mysql connector: %w", err))
	}
	return sql.OpenDB(conn), nil
}

// CopyFrom inserts rows in one transaction. Rows are chunked so no single
// statement exceeds the server's placeholder limit.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	per := max(1, maxPlaceholders/len(columns))
	var inserted int64
	for start := 0; start < len(rows); start += per {
		chunk := rows[start:min(start+per, len(rows))]
		query, args, err := insertStatement(table, columns, chunk)
		if err != nil {
			rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// insertStatement builds INSERT INTO t (c1, c2) VALUES (?, ?), (?, ?) and
// the flattened arguments for rows.
func insertStatement(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myddl.QuoteFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		for _, v := range row {
			args = append(args, toCopyVal(v))
		}
	}
	return sb.String(), args, nil
}

// toCopyVal renders TimeOfDay as a TIME literal; nil stays nil.
func toCopyVal(v any) any {
	switch x := v.(type) {
	case transformer.TimeOfDay:
		return x.String()
	default:
		return v
	}
}

func classify(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errAccessDenied, errBadDB:
			return storage.Permanent(err)
		}
	}
	return err
}
