package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"champhelper/internal/resolve"
)

// ErrCacheMiss is returned by Load when no table is stored for the requested
// version, including when the stored table belongs to another version.
var ErrCacheMiss = resolve.ErrCacheMiss

// Config is the minimal configuration needed to open a TableStore.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; its meaning is
//     backend-specific (a directory for "file", a connection string otherwise).
//   - Name selects the logical table; empty means DefaultName.
type Config struct {
	Kind string
	DSN  string
	Name string
}

// DefaultName is the logical name alias tables are stored under.
const DefaultName = "champ_alias_map"

// NameOrDefault returns cfg.Name, or DefaultName when it is empty.
func (cfg Config) NameOrDefault() string {
	if cfg.Name == "" {
		return DefaultName
	}
	return cfg.Name
}

// TableStore persists one alias table per name together with the version it
// was built for. It satisfies resolve.Store.
type TableStore interface {
	// Load returns the stored table if it was saved for version. Anything
	// else (no row, no file, other version, undecodable payload) is
	// ErrCacheMiss. Backend I/O failures are returned as they are.
	Load(ctx context.Context, version string) (*resolve.AliasTable, error)

	// Save replaces the stored table and its version.
	Save(ctx context.Context, version string, t *resolve.AliasTable) error

	// Close releases backend resources. Call once.
	Close() error
}

// Factory opens a TableStore for cfg.
type Factory func(ctx context.Context, cfg Config) (TableStore, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a backend under kind (e.g. "sqlite", "postgres").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//
// Panics:
//   - If kind is empty, f is nil, or kind is already registered.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

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

// New opens a TableStore using the registered backend factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (TableStore, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
