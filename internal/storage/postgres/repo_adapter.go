package postgres

import (
	"context"
	"fmt"

	"tosql/internal/storage"
	pgddl "tosql/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// ensureDatabase is a test hook for provisioning.
var ensureDatabase = EnsureDatabase

// wrappedRepo adapts *Repository to storage.Repository and calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" factory, dialect, and provisioner.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", storage.Dialect{
		MapType:     pgddl.MapType,
		CreateTable: pgddl.BuildCreateTableSQL,
	})

	storage.RegisterProvisioner("postgres", func(ctx context.Context, cfg storage.Config) (storage.Config, error) {
		if err := ensureDatabase(ctx, cfg.DSN, cfg.Database); err != nil {
			return cfg, fmt.Errorf("provision postgres: %w", err)
		}
		return cfg, nil
	})
}
