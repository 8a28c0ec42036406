package datasource

import (
	"context"
	"sync"
	"time"
)

// AdapterInfo describes a registered backend for discovery endpoints.
type AdapterInfo struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// Options carries engine-level settings the factories need beyond the
// per-source connection map.
type Options struct {
	// DataDir confines file-backed databases (SQLite, DuckDB). Relative
	// paths in a connection map resolve under it.
	DataDir string

	// ConnectTimeout bounds establishing a connection. Zero means the
	// caller's context deadline applies alone.
	ConnectTimeout time.Duration

	// PoolMaxConns caps a pooled backend's per-call pool. Zero keeps the
	// backend default.
	PoolMaxConns int32
}

// Registration pairs an adapter's info with its factory.
type Registration struct {
	Info    AdapterInfo
	Factory func(ctx context.Context, connection map[string]any, opts Options) (Adapter, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register is called by each backend's init(). Thread-safe for concurrent
// package initialization.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for every compiled-in backend.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	return result
}

// GetFactory returns the factory for a data source type, or nil if the type
// is not registered.
func GetFactory(dsType string) func(ctx context.Context, connection map[string]any, opts Options) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks whether an adapter type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}
