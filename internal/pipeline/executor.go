package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// ErrNoResponse is returned when every filter passed and none produced a response.
var ErrNoResponse = errors.New("no response filter produced a response")

// Executor orchestrates response filter execution.
// It keeps the filters sorted by Order and runs them sequentially.
type Executor struct {
	filters []ports.ResponseFilter
}

// NewExecutor creates an executor. Filters with equal Order keep their given order.
func NewExecutor(filters ...ports.ResponseFilter) *Executor {
	sorted := make([]ports.ResponseFilter, len(filters))
	copy(sorted, filters)

	// Sort by order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})

	return &Executor{filters: sorted}
}

// Filters returns the filters in execution order.
func (e *Executor) Filters() []ports.ResponseFilter {
	out := make([]ports.ResponseFilter, len(e.filters))
	copy(out, e.filters)
	return out
}

// Run executes the filters in order until one returns a response.
func (e *Executor) Run(ctx context.Context, inv ports.Invocation, resp ports.WireResponse) (*domain.Response, error) {
	for _, filter := range e.filters {
		out, err := filter.AfterReceiveResponse(ctx, inv, resp)
		if err != nil {
			return nil, fmt.Errorf("response filter %s error: %w", filter.Name(), err)
		}
		if out != nil {
			return out, nil
		}
	}

	return nil, ErrNoResponse
}

// IsDenied returns true if the response was rejected by a filter.
func IsDenied(resp *domain.Response) bool {
	return resp != nil && resp.Err != nil && resp.Err.Type == domain.ErrorTypeDenied
}

// Ensure Executor implements the interface.
var _ ports.ResponseFilterChain = (*Executor)(nil)
