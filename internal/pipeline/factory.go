package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

// NewExecutorFromConfig creates the response chain from configuration.
// The decode stage is always appended, so the chain is never empty.
func NewExecutorFromConfig(cfg config.PipelineConfig, logger *slog.Logger) (*Executor, error) {
	filters := make([]ports.ResponseFilter, 0, len(cfg.Stages)+1)

	for _, stageCfg := range cfg.Stages {
		stage, err := newStageFromConfig(stageCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stageCfg.Name, err)
		}
		filters = append(filters, stage)
	}

	filters = append(filters, NewDecodeStage(WithDecodeLogger(logger)))
	return NewExecutor(filters...), nil
}

func newStageFromConfig(cfg config.PipelineStageConfig, logger *slog.Logger) (*WebhookStage, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.Order == math.MaxInt {
		return nil, fmt.Errorf("order %d is reserved for the decode stage", cfg.Order)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must not be negative, got %d", cfg.Retries)
	}

	// Parse timeout
	timeout := 5 * time.Second // Default
	if cfg.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
	}

	// Parse onError action
	var onError WebhookAction
	switch cfg.OnError {
	case "", "deny":
		onError = ActionDeny
	case "allow":
		onError = ActionAllow
	default:
		return nil, fmt.Errorf("invalid on_error %q (must be 'allow' or 'deny')", cfg.OnError)
	}

	return NewWebhookStage(WebhookStageConfig{
		Name:    cfg.Name,
		Order:   cfg.Order,
		URL:     cfg.URL,
		Timeout: timeout,
		OnError: onError,
		Retries: cfg.Retries,
		Headers: cfg.Headers,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport.NewRoundTripper(transport.Options{Logger: logger}),
		},
	}), nil
}
