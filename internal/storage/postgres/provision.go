package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	maintenanceDB       = "postgres"
	queryDatabaseExists = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	codeDuplicateDB     = "42P04"
)

// connectMaintenance is a test hook for reaching the maintenance database.
var connectMaintenance = func(ctx context.Context, dsn string) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	cfg.Database = maintenanceDB
	return pgx.ConnectConfig(ctx, cfg)
}

// EnsureDatabase creates name through the maintenance database when it is
// missing. A concurrent creator winning the race is not an error.
func EnsureDatabase(ctx context.Context, dsn, name string) error {
	conn, err := connectMaintenance(ctx, dsn)
	if err != nil {
		return classify(fmt.Errorf("connect %s: %w", maintenanceDB, err))
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, name).Scan(&exists); err != nil {
		return fmt.Errorf("check database %q: %w", name, err)
	}
	if exists {
		slog.Debug("database exists", "kind", "postgres", "database", name)
		return nil
	}

	slog.Info("creating database", "kind", "postgres", "database", name)
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeDuplicateDB {
			return nil
		}
		return fmt.Errorf("create database %q: %w", name, err)
	}
	return nil
}
