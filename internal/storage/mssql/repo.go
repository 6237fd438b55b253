// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. Each batch is one bulk copy inside a
// transaction.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"tosql/internal/storage"
	msddl "tosql/internal/storage/mssql/ddl"
	"tosql/internal/transformer"
)

// Server error numbers that retrying cannot fix.
const (
	errLoginFailed    = 18456
	errCannotOpenDB   = 4060
	errDatabaseExists = 1801
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN      string
	Database string // overrides the DSN's database when set
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := openDB(cfg.DSN, cfg.Database)
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

func openDB(dsn, database string) (*sql.DB, error) {
	pcfg, err := msdsn.Parse(dsn)
	if err != nil {
		return nil, storage.Permanent(fmt.Errorf("mssql dsn: %w", err))
	}
	if database != "" {
		pcfg.Database = database
	}
	return sql.OpenDB(mssql.NewConnectorConfig(pcfg)), nil
}

// CopyFrom bulk-copies rows into table in one transaction; a failing row
// rolls the whole batch back.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msddl.QuoteFQN(table), mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		vals := make([]any, len(rows[i]))
		for j, v := range rows[i] {
			vals[j] = toCopyVal(v)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize into %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// toCopyVal converts values the bulk copy encoder cannot take; nil stays nil.
func toCopyVal(v any) any {
	switch x := v.(type) {
	case transformer.TimeOfDay:
		return time.Date(1, 1, 1, x.Hour, x.Minute, 0, 0, time.UTC)
	default:
		return v
	}
}

func classify(err error) error {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case errLoginFailed, errCannotOpenDB:
			return storage.Permanent(err)
		}
	}
	return err
}
