package sqlite

import (
	"context"

	"tosql/internal/storage"
	sqliteddl "tosql/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite", storage.Dialect{
		MapType:     sqliteddl.MapType,
		CreateTable: sqliteddl.BuildCreateTableSQL,
	})

	// A SQLite database is its file; opening creates it. Provisioning only
	// pins the DSN to the file the database name implies.
	storage.RegisterProvisioner("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Config, error) {
		cfg.DSN = Config{DSN: cfg.DSN, Database: cfg.Database}.Path()
		return cfg, nil
	})
}
