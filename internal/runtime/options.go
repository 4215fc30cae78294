package runtime

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/memory"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage/sqlite"
)

// Option is a functional option for configuring a Runtime.
type Option func(*Runtime) error

// WithFileConfig loads configuration from a YAML file plus RESTC_ environment overrides.
func WithFileConfig(path string) Option {
	return func(r *Runtime) error {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		r.cfg = cfg
		return nil
	}
}

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *Runtime) error {
		r.cfg = cfg
		return nil
	}
}

// WithSQLite records invocations in a SQLite database, overriding storage config.
func WithSQLite(path string) Option {
	return func(r *Runtime) error {
		store, err := sqlite.New(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		r.store = store
		return nil
	}
}

// WithMemoryStore records invocations in memory, overriding storage config.
func WithMemoryStore() Option {
	return func(r *Runtime) error {
		r.store = memory.New()
		return nil
	}
}

// WithStore sets a custom invocation store.
func WithStore(store ports.InvocationStore) Option {
	return func(r *Runtime) error {
		r.store = store
		return nil
	}
}

// WithHTTPClient replaces the HTTP client built from client config.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Runtime) error {
		r.httpClient = hc
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}
