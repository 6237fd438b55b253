package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"tosql/internal/storage"
	"tosql/internal/transformer"
)

func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	fakeRepo := &Repository{}
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fakeRepo, func() {}, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:     "mysql",
		DSN:      "root:pw@tcp(127.0.0.1:3306)/",
		Database: "sales",
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	defer repo.Close()
	if gotCfg.Database != "sales" {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	if w, ok := repo.(*wrappedRepo); !ok || w.Repository != fakeRepo {
		t.Fatalf("storage.New() = %T, want *wrappedRepo around fake", repo)
	}
}

func TestMySQLProvisionerUsesHook(t *testing.T) {
	orig := ensureDatabase
	defer func() { ensureDatabase = orig }()

	var gotName string
	ensureDatabase = func(ctx context.Context, dsn, name string) error {
		gotName = name
		return nil
	}
	if _, err := storage.Provision(context.Background(), storage.Config{Kind: "mysql", Database: "people"}); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if gotName != "people" {
		t.Fatalf("ensureDatabase name = %q", gotName)
	}
}

func TestInsertStatement(t *testing.T) {
	t.Parallel()

	q, args, err := insertStatement("people", []string{"id", "at"}, [][]any{
		{int64(1), transformer.TimeOfDay{Hour: 9, Minute: 30}},
		{int64(2), nil},
	})
	if err != nil {
		t.Fatalf("insertStatement() error = %v", err)
	}
	wantQ := "INSERT INTO `people` (`id`, `at`) VALUES (?, ?), (?, ?)"
	if q != wantQ {
		t.Fatalf("query = %q, want %q", q, wantQ)
	}
	if len(args) != 4 || args[1] != "09:30:00" || args[3] != nil {
		t.Fatalf("args = %#v", args)
	}

	if _, _, err := insertStatement("t", []string{"a"}, [][]any{{1, 2}}); err == nil {
		t.Fatalf("insertStatement() with wide row error = nil")
	}
}

func TestOpenDBRejectsBadDSN(t *testing.T) {
	t.Parallel()

	_, err := openDB("not a dsn", "", true)
	if err == nil || !storage.IsPermanent(err) {
		t.Fatalf("openDB() error = %v, want permanent", err)
	}
}

func TestToCopyValKeepsTimes(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	if got := toCopyVal(ts); got != ts {
		t.Fatalf("toCopyVal(time) = %v", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	denied := &mysql.MySQLError{Number: errAccessDenied, Message: "Access denied"}
	if !storage.IsPermanent(classify(denied)) {
		t.Fatalf("access denied should be permanent")
	}
	if err := classify(errors.New("i/o timeout")); storage.IsPermanent(err) || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("classify(io) = %v", err)
	}
}
