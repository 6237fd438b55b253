package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	mssql "github.com/microsoft/go-mssqldb"

	msddl "tosql/internal/storage/mssql/ddl"
)

const (
	maintenanceDB       = "master"
	queryDatabaseExists = "SELECT DB_ID(@p1)"
)

// EnsureDatabase creates name through master when DB_ID reports it missing.
func EnsureDatabase(ctx context.Context, dsn, name string) error {
	db, err := openDB(dsn, maintenanceDB)
	if err != nil {
		return err
	}
	defer db.Close()

	var id sql.NullInt64
	if err := db.QueryRowContext(ctx, queryDatabaseExists, name).Scan(&id); err != nil {
		return classify(fmt.Errorf("check database %q: %w", name, err))
	}
	if id.Valid {
		slog.Debug("database exists", "kind", "mssql", "database", name)
		return nil
	}

	slog.Info("creating database", "kind", "mssql", "database", name)
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+msddl.QuoteIdent(name)); err != nil {
		var msErr mssql.Error
		if errors.As(err, &msErr) && msErr.Number == errDatabaseExists {
			return nil
		}
		return fmt.Errorf("create database %q: %w", name, err)
	}
	return nil
}
