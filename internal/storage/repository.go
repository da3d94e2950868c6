// Package storage materializes a decomposition plan into a relational
// database. It turns plan relations into table specifications, orders them
// so parents are created before the children that reference them, and hands
// the actual DDL/DML off to a registered backend (SQLite, Postgres, MySQL,
// or SQL Server).
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config selects and configures a storage backend.
//
// Kind must match a registered backend kind; DSN is passed through to the
// backend factory and validated there.
type Config struct {
	Kind string
	DSN  string
}

// Repository is the backend-agnostic surface the loader needs. Each backend
// implements these semantics in its own dialect (Postgres ON CONFLICT,
// SQLite OR IGNORE, etc).
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureTables creates the given tables if they do not exist,
	// including primary and foreign key constraints.
	EnsureTables(ctx context.Context, tables []TableSpec) error

	// InsertRows bulk-inserts rows and reports how many were written.
	// Backends make the insert idempotent where the dialect allows it.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
// Call it from an init() function in a backend package.
//
// Panics on empty kind, nil factory, or duplicate registration; ambiguous
// backend selection must fail fast.
func Register(kind string, f factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	factoriesMu.RLock()
	f := factories[cfg.Kind]
	factoriesMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
