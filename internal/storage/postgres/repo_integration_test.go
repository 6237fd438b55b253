//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	gddl "tosql/internal/ddl"
	"tosql/internal/infer"
	"tosql/internal/storage"
	"tosql/internal/transformer"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithDatabase("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func TestPostgresEndToEnd(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	cfg, err := storage.Provision(ctx, storage.Config{Kind: "postgres", DSN: dsn, Database: "people_db"})
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	// A second call finds the database and does nothing.
	if _, err := storage.Provision(ctx, cfg); err != nil {
		t.Fatalf("Provision() again error = %v", err)
	}

	repo, err := storage.Open(ctx, cfg, 30*time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	def := gddl.TableDef{FQN: "people", Columns: []gddl.ColumnDef{
		{Name: "id", Type: infer.Integer},
		{Name: "name", Type: infer.Text, Nullable: true},
		{Name: "born", Type: infer.Date, Nullable: true},
		{Name: "alarm", Type: infer.Time, Nullable: true},
	}}
	if err := storage.EnsureTable(ctx, "postgres", repo, def); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}

	in := make(chan []any, 4)
	in <- []any{int64(1), "Alice", time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), transformer.TimeOfDay{Hour: 7}}
	in <- []any{int64(2), nil, nil, nil}
	in <- []any{nil, "no id", nil, nil} // violates NOT NULL
	in <- []any{int64(4), "Dan", nil, nil}
	close(in)

	stats, err := storage.Load(ctx, repo, "people", def.ColumnNames(), in, 10)
	var re *storage.RowError
	if !errors.As(err, &re) || re.Row != 3 {
		t.Fatalf("Load() error = %v, want RowError at row 3", err)
	}
	if stats.Rows != 2 {
		t.Fatalf("Load() rows = %d, want 2", stats.Rows)
	}
}
