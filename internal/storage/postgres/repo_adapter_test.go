package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	gddl "tosql/internal/ddl"
	"tosql/internal/infer"
	"tosql/internal/storage"
	"tosql/internal/transformer"
)

// The hook-swapping tests share package globals and do not run in parallel.

func TestPostgresStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		called   bool
		gotCfg   Config
		closed   bool
		fakeRepo = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		called = true
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:     "postgres",
		DSN:      "postgres://127.0.0.1:5432/",
		Database: "sales",
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v, want nil", err)
	}
	if !called {
		t.Fatalf("newRepository hook was not called")
	}
	if gotCfg.DSN != "postgres://127.0.0.1:5432/" || gotCfg.Database != "sales" {
		t.Errorf("hook cfg = %+v", gotCfg)
	}
	w, ok := repo.(*wrappedRepo)
	if !ok {
		t.Fatalf("storage.New() type = %T, want *wrappedRepo", repo)
	}
	if w.Repository != fakeRepo {
		t.Fatalf("wrappedRepo.Repository = %p, want %p", w.Repository, fakeRepo)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close() did not call closeFn")
	}
}

func TestPostgresStorageRegistrationPropagatesError(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	want := errors.New("boom")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return nil, nil, want
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "postgres"}); !errors.Is(err, want) {
		t.Fatalf("storage.New() error = %v, want %v", err, want)
	}
}

func TestPostgresProvisionerUsesHook(t *testing.T) {
	orig := ensureDatabase
	defer func() { ensureDatabase = orig }()

	var gotDSN, gotName string
	ensureDatabase = func(ctx context.Context, dsn, name string) error {
		gotDSN, gotName = dsn, name
		return nil
	}

	cfg := storage.Config{Kind: "postgres", DSN: "postgres://h/", Database: "people"}
	out, err := storage.Provision(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if gotDSN != cfg.DSN || gotName != "people" || out != cfg {
		t.Fatalf("Provision() dsn=%q name=%q out=%+v", gotDSN, gotName, out)
	}
}

func TestPostgresDialectRegistered(t *testing.T) {
	def := gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "at", Type: infer.Time}}}
	got, err := storage.RenderCreateTable("postgres", def)
	if err != nil {
		t.Fatalf("RenderCreateTable() error = %v", err)
	}
	if !strings.Contains(got, `"at" TIME NOT NULL`) {
		t.Fatalf("RenderCreateTable() = %s", got)
	}
}

func TestToCopyVal(t *testing.T) {
	t.Parallel()

	got := toCopyVal(transformer.TimeOfDay{Hour: 1, Minute: 2})
	want := pgtype.Time{Microseconds: (time.Hour + 2*time.Minute).Microseconds(), Valid: true}
	if got != want {
		t.Fatalf("toCopyVal(TimeOfDay) = %#v, want %#v", got, want)
	}
	if toCopyVal(nil) != nil {
		t.Fatalf("toCopyVal(nil) != nil")
	}
	if toCopyVal(int64(3)) != int64(3) {
		t.Fatalf("toCopyVal(int64) changed the value")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	auth := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	if !storage.IsPermanent(classify(auth)) {
		t.Fatalf("auth failure should be permanent")
	}
	busy := &pgconn.PgError{Code: "53300", Message: "too many connections"}
	if storage.IsPermanent(classify(busy)) {
		t.Fatalf("too many connections should be retried")
	}
	if storage.IsPermanent(classify(errors.New("dial tcp: connection refused"))) {
		t.Fatalf("network errors should be retried")
	}
}

func TestIdentifierSplitsSchema(t *testing.T) {
	t.Parallel()

	id := identifier("public.people")
	if len(id) != 2 || id[0] != "public" || id[1] != "people" {
		t.Fatalf("identifier() = %v", id)
	}
}
