package mssql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	gddl "tosql/internal/ddl"
	"tosql/internal/infer"
	"tosql/internal/storage"
	"tosql/internal/transformer"
)

func TestMSSQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg   Config
		closed   bool
		fakeRepo = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:     "mssql",
		DSN:      "sqlserver://sa:pw@localhost:1433",
		Database: "sales",
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v, want nil", err)
	}
	if gotCfg.Database != "sales" {
		t.Errorf("hook cfg = %+v", gotCfg)
	}
	w, ok := repo.(*wrappedRepo)
	if !ok || w.Repository != fakeRepo {
		t.Fatalf("storage.New() = %T, want *wrappedRepo around fake", repo)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close() did not call closeFn")
	}
}

func TestMSSQLProvisionerWrapsError(t *testing.T) {
	orig := ensureDatabase
	defer func() { ensureDatabase = orig }()

	boom := errors.New("boom")
	ensureDatabase = func(ctx context.Context, dsn, name string) error { return boom }

	_, err := storage.Provision(context.Background(), storage.Config{Kind: "mssql", Database: "x"})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "provision mssql") {
		t.Fatalf("Provision() error = %v", err)
	}
}

func TestMSSQLDialectRegistered(t *testing.T) {
	def := gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "n", Type: infer.BigInt, Nullable: true}}}
	got, err := storage.RenderCreateTable("mssql", def)
	if err != nil {
		t.Fatalf("RenderCreateTable() error = %v", err)
	}
	if !strings.Contains(got, "[n] BIGINT\n") {
		t.Fatalf("RenderCreateTable() = %s", got)
	}
}

func TestOpenDBRejectsBadDSN(t *testing.T) {
	t.Parallel()

	_, err := openDB("sqlserver://host:notaport", "")
	if err == nil || !storage.IsPermanent(err) {
		t.Fatalf("openDB() error = %v, want permanent", err)
	}
}

func TestToCopyVal(t *testing.T) {
	t.Parallel()

	got := toCopyVal(transformer.TimeOfDay{Hour: 13, Minute: 5})
	want := time.Date(1, 1, 1, 13, 5, 0, 0, time.UTC)
	if got != want {
		t.Fatalf("toCopyVal(TimeOfDay) = %v, want %v", got, want)
	}
	if toCopyVal("x") != "x" {
		t.Fatalf("toCopyVal(string) changed the value")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	if !storage.IsPermanent(classify(mssql.Error{Number: errLoginFailed, Message: "Login failed"})) {
		t.Fatalf("login failure should be permanent")
	}
	if storage.IsPermanent(classify(errors.New("connection refused"))) {
		t.Fatalf("network errors should be retried")
	}
}
