// Package postgres implements a Postgres repository using pgx v5. Rows are
// loaded with COPY, one COPY per batch.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"tosql/internal/storage"
	"tosql/internal/transformer"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN      string // connection string for pgxpool (URL or key=value)
	Database string // overrides the DSN's database when set
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects, pings, and returns a Repository plus a Close
// function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, storage.Permanent(fmt.Errorf("postgres dsn: %w", err))
	}
	if cfg.Database != "" {
		pcfg.ConnConfig.Database = cfg.Database
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, classify(fmt.Errorf("ping: %w", err))
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool}, closeFn, nil
}

// CopyFrom loads rows into table with a single COPY. COPY is atomic: a bad
// row fails the whole call and nothing is inserted.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		for j, v := range row {
			row[j] = toCopyVal(v)
		}
	}
	n, err := r.pool.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s: %s (%s)", table, pgErr.Message, pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// toCopyVal converts values pgx has no codec for; nil stays nil.
func toCopyVal(v any) any {
	switch x := v.(type) {
	case transformer.TimeOfDay:
		return pgtype.Time{Microseconds: x.Duration().Microseconds(), Valid: true}
	default:
		return v
	}
}

func identifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

// classify marks server answers that retrying cannot fix: authentication
// (class 28) and unknown database (3D000).
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "28") || pgErr.Code == "3D000" {
			return storage.Permanent(err)
		}
	}
	return err
}
