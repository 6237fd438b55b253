package mssql

import (
	"context"
	"fmt"

	"tosql/internal/storage"
	msddl "tosql/internal/storage/mssql/ddl"
)

// newRepository is a test hook pointing at NewRepository.
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

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql", storage.Dialect{
		MapType:     msddl.MapType,
		CreateTable: msddl.BuildCreateTableSQL,
	})

	storage.RegisterProvisioner("mssql", func(ctx context.Context, cfg storage.Config) (storage.Config, error) {
		if err := ensureDatabase(ctx, cfg.DSN, cfg.Database); err != nil {
			return cfg, fmt.Errorf("provision mssql: %w", err)
		}
		return cfg, nil
	})
}
