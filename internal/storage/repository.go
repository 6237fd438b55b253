// Package storage holds the backend-agnostic contracts for materializing
// tables: the Repository interface, a registry of backend factories keyed by
// kind, dialect and provisioning registries, and the batched loader.
//
// Backends register themselves from init(); importing
// tosql/internal/storage/all enables every built-in kind.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned by New for a kind nothing registered.
var ErrUnknownKind = errors.New("unknown storage kind")

// Repository is an open connection to one target database.
type Repository interface {
	// Exec runs a statement that returns no rows (DDL).
	Exec(ctx context.Context, sql string) error
	// CopyFrom inserts rows into table. Each row is aligned with columns.
	// A call must be atomic: either every row is inserted or none is.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Close releases the connection.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind     string // "postgres", "mssql", "mysql", "sqlite"
	DSN      string // backend connection string
	Database string // target database name; provisioning and DSN rewriting use it
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: %w %q (registered: %v)", ErrUnknownKind, cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
