package mysql

import (
	"context"
	"fmt"
	"log/slog"

	myddl "tosql/internal/storage/mysql/ddl"
)

// EnsureDatabase runs CREATE DATABASE IF NOT EXISTS over a connection with
// no default database selected.
func EnsureDatabase(ctx context.Context, dsn, name string) error {
	db, err := openDB(dsn, "", false)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Debug("ensuring database", "kind", "mysql", "database", name)
	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+myddl.QuoteIdent(name)); err != nil {
		return classify(fmt.Errorf("create database %q: %w", name, err))
	}
	return nil
}
