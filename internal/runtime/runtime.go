// Package runtime assembles a ready-to-use client from configuration.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tjfontaine/polyglot-rest-client/internal/client"
	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/definition"
	"github.com/tjfontaine/polyglot-rest-client/internal/pipeline"
	"github.com/tjfontaine/polyglot-rest-client/internal/storage"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

// Runtime owns the client, the operation registry and the invocation store.
type Runtime struct {
	// Dependencies (injected via options)
	cfg        *config.Config
	store      ports.InvocationStore
	httpClient *http.Client
	logger     *slog.Logger

	registry *definition.Registry
	client   *client.Client
}

// New creates a Runtime. A config is required (WithFileConfig or WithConfig);
// the store defaults to the one named by the config.
func New(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if rt.cfg == nil {
		return nil, fmt.Errorf("config required (use WithFileConfig or WithConfig)")
	}
	if rt.cfg.Client.BaseURL == "" {
		return nil, fmt.Errorf("client.base_url is required")
	}

	registry, err := definition.NewRegistryFromConfig(rt.cfg.Operations)
	if err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}
	rt.registry = registry

	chain, err := pipeline.NewExecutorFromConfig(rt.cfg.Pipeline, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("build response chain: %w", err)
	}

	if rt.store == nil {
		store, err := storage.New(rt.cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		rt.store = store
	}

	if rt.httpClient == nil {
		hc, err := newHTTPClient(rt.cfg.Client, rt.logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.httpClient = hc
	}

	c, err := client.New(rt.cfg.Client.BaseURL,
		client.WithHTTPClient(rt.httpClient),
		client.WithResponseChain(chain),
		client.WithRateLimit(rt.cfg.Client.RateLimit, rt.cfg.Client.Burst),
		client.WithStore(rt.store),
		client.WithLogger(rt.logger),
	)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	rt.client = c

	rt.logger.Debug("runtime ready",
		slog.String("base_url", rt.cfg.Client.BaseURL),
		slog.Int("operations", len(registry.List())),
		slog.Int("filters", len(chain.Filters())))

	return rt, nil
}

func newHTTPClient(cfg config.ClientConfig, logger *slog.Logger) (*http.Client, error) {
	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid client.timeout %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	return &http.Client{
		Timeout: timeout,
		Transport: transport.NewRoundTripper(transport.Options{
			Logger:          logger,
			BlockPrivateIPs: cfg.BlockPrivateIPs,
		}),
	}, nil
}

// Invoke calls the named operation.
func (r *Runtime) Invoke(ctx context.Context, operation string, args client.Args) (*domain.Response, error) {
	op, ok := r.registry.Get(operation)
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	return r.client.Invoke(ctx, op, args)
}

// Operations lists the configured operations sorted by name.
func (r *Runtime) Operations() []*definition.OperationMeta {
	return r.registry.List()
}

// History lists recorded invocations, newest first.
func (r *Runtime) History(ctx context.Context, opts ports.ListOptions) ([]*ports.InvocationRecord, error) {
	if r.store == nil {
		return nil, fmt.Errorf("invocation history is disabled (storage.type: none)")
	}
	return r.store.ListInvocations(ctx, opts)
}

// Invocation returns one recorded invocation.
func (r *Runtime) Invocation(ctx context.Context, id string) (*ports.InvocationRecord, error) {
	if r.store == nil {
		return nil, fmt.Errorf("invocation history is disabled (storage.type: none)")
	}
	return r.store.GetInvocation(ctx, id)
}

// Close releases the invocation store.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
