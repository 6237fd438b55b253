package mysql

import (
	"context"
	"fmt"

	"tosql/internal/storage"
	myddl "tosql/internal/storage/mysql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// ensureDatabase is a test hook for provisioning.
var ensureDatabase = EnsureDatabase

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql", storage.Dialect{
		MapType:     myddl.MapType,
		CreateTable: myddl.BuildCreateTableSQL,
	})

	storage.RegisterProvisioner("mysql", func(ctx context.Context, cfg storage.Config) (storage.Config, error) {
		if err := ensureDatabase(ctx, cfg.DSN, cfg.Database); err != nil {
			return cfg, fmt.Errorf("provision mysql: %w", err)
		}
		return cfg, nil
	})
}

// wrappedRepo adapts *mysql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
