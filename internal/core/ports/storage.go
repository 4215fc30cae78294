package ports

import (
	"context"
	"errors"
	"time"
)

// ErrInvocationNotFound is returned when no record exists for an ID.
var ErrInvocationNotFound = errors.New("invocation not found")

// InvocationStore defines the interface for invocation record storage.
type InvocationStore interface {
	// SaveInvocation persists the outcome of an invocation
	SaveInvocation(ctx context.Context, rec *InvocationRecord) error

	// GetInvocation retrieves an invocation record by ID
	GetInvocation(ctx context.Context, id string) (*InvocationRecord, error)

	// ListInvocations lists invocation records, newest first
	ListInvocations(ctx context.Context, opts ListOptions) ([]*InvocationRecord, error)

	// Close closes the storage connection
	Close() error
}

// InvocationRecord is the persisted summary of one invocation.
type InvocationRecord struct {
	ID           string        `json:"id"`
	Operation    string        `json:"operation"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	StatusCode   int           `json:"status_code"`
	ContentType  string        `json:"content_type,omitempty"`
	Failed       bool          `json:"failed"`
	ErrorType    string        `json:"error_type,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ListOptions contains pagination and filter options.
type ListOptions struct {
	Operation string
	Limit     int
	Offset    int
}
