// Package storage selects and re-exports the invocation record stores.
package storage

import (
	"fmt"

	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/memory"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/sqlite"
)

// Re-export storage interfaces and types from core/ports.
type (
	InvocationStore  = ports.InvocationStore
	InvocationRecord = ports.InvocationRecord
	ListOptions      = ports.ListOptions
)

// ErrNotFound is returned by Get when no record exists.
var ErrNotFound = ports.ErrInvocationNotFound

// New opens the store named by cfg.Type.
func New(cfg config.StorageConfig) (InvocationStore, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("storage.sqlite.path is required")
		}
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
