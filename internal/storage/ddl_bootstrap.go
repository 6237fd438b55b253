package storage

import (
	"context"
	"fmt"
	"sync"

	"tosql/internal/ddl"
	"tosql/internal/infer"
)

// Dialect is a backend's DDL policy: how logical types map to SQL types and
// how a CREATE TABLE statement is rendered.
type Dialect struct {
	MapType     func(infer.Type) string
	CreateTable func(ddl.TableDef) (string, error)
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the dialect for kind. Backends call it
// from init().
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

func dialectFor(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok || d.MapType == nil || d.CreateTable == nil {
		return Dialect{}, fmt.Errorf("no DDL registered for storage.kind=%q", kind)
	}
	return d, nil
}

// ResolveTypes fills SQLType on every column using kind's type map.
func ResolveTypes(kind string, def ddl.TableDef) (ddl.TableDef, error) {
	d, err := dialectFor(kind)
	if err != nil {
		return ddl.TableDef{}, err
	}
	return def.WithSQLTypes(d.MapType), nil
}

// RenderCreateTable resolves types and renders kind's CREATE TABLE.
func RenderCreateTable(kind string, def ddl.TableDef) (string, error) {
	d, err := dialectFor(kind)
	if err != nil {
		return "", err
	}
	return d.CreateTable(def.WithSQLTypes(d.MapType))
}

// EnsureTable renders kind's CREATE TABLE for def and runs it through repo.
// Dialect statements are guarded so an existing table is left alone.
func EnsureTable(ctx context.Context, kind string, repo Repository, def ddl.TableDef) error {
	stmt, err := RenderCreateTable(kind, def)
	if err != nil {
		return fmt.Errorf("render DDL for %s: %w", def.FQN, err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", def.FQN, err)
	}
	return nil
}
