package storage

import (
	"context"
	"fmt"
	"sync"
)

// Provisioner creates cfg.Database when it does not exist and returns the
// config to use for connecting to it (usually with the DSN pointed at the new
// database). It must be safe to call when the database already exists.
type Provisioner func(ctx context.Context, cfg Config) (Config, error)

var (
	provMu       sync.RWMutex
	provisioners = map[string]Provisioner{}
)

// RegisterProvisioner registers (or replaces) the provisioner for kind.
func RegisterProvisioner(kind string, p Provisioner) {
	provMu.Lock()
	defer provMu.Unlock()
	provisioners[kind] = p
}

// Provision creates the target database if needed. A kind without a
// provisioner is an error.
func Provision(ctx context.Context, cfg Config) (Config, error) {
	provMu.RLock()
	p, ok := provisioners[cfg.Kind]
	provMu.RUnlock()
	if !ok {
		return cfg, fmt.Errorf("storage: no provisioner registered for kind %q", cfg.Kind)
	}
	if cfg.Database == "" {
		return cfg, fmt.Errorf("storage: database name is required")
	}
	return p(ctx, cfg)
}
