package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// Store is an in-memory implementation of InvocationStore.
type Store struct {
	mu      sync.RWMutex
	records map[string]*ports.InvocationRecord
}

var _ ports.InvocationStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		records: make(map[string]*ports.InvocationRecord),
	}
}

func (s *Store) SaveInvocation(ctx context.Context, rec *ports.InvocationRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("invocation record requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("invocation %s already exists", rec.ID)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	stored := *rec
	s.records[rec.ID] = &stored
	return nil
}

func (s *Store) GetInvocation(ctx context.Context, id string) (*ports.InvocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("invocation %s: %w", id, ports.ErrInvocationNotFound)
	}

	out := *rec
	return &out, nil
}

func (s *Store) ListInvocations(ctx context.Context, opts ports.ListOptions) ([]*ports.InvocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ports.InvocationRecord
	for _, rec := range s.records {
		if opts.Operation != "" && rec.Operation != opts.Operation {
			continue
		}
		out := *rec
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	// Simple pagination
	start := opts.Offset
	if start >= len(result) {
		return []*ports.InvocationRecord{}, nil
	}

	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) Close() error {
	return nil
}
