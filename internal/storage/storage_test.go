package storage

import (
	"path/filepath"
	"testing"

	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/memory"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/sqlite"
)

func TestNew(t *testing.T) {
	t.Run("memory default", func(t *testing.T) {
		store, err := New(config.StorageConfig{})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := store.(*memory.Store); !ok {
			t.Errorf("New() = %T, want *memory.Store", store)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "sqlite"}
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

		store, err := New(cfg)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*sqlite.Store); !ok {
			t.Errorf("New() = %T, want *sqlite.Store", store)
		}
	})

	t.Run("none", func(t *testing.T) {
		store, err := New(config.StorageConfig{Type: "none"})
		if err != nil || store != nil {
			t.Errorf("New() = %v, %v; want nil, nil", store, err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := New(config.StorageConfig{Type: "sqlite"}); err == nil {
			t.Error("expected error for sqlite without path")
		}
		if _, err := New(config.StorageConfig{Type: "postgres"}); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
