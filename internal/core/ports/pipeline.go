// Package ports defines the core interfaces for the client.
// This file contains the response pipeline interfaces and the collaborators
// the pipeline consumes.
package ports

import (
	"context"
	"reflect"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
)

// RestOperationKey is the OperationMeta extension key holding the RestOperation.
const RestOperationKey = "rest-operation"

// WireResponse is a buffered HTTP response for one invocation.
type WireResponse interface {
	// StatusCode returns the HTTP status, or 0 if it was never set.
	StatusCode() int
	// ReasonPhrase returns the status text, or "" if unknown.
	ReasonPhrase() string
	// RequestPath returns the path the request was sent to.
	RequestPath() string
	// Header returns the first value for name (case-insensitive), or "" if absent.
	Header(name string) string
	// Headers returns every value for name (case-insensitive) in wire order.
	Headers(name string) []string
	// Body returns the fully buffered body.
	Body() []byte
}

// MutableWireResponse is implemented by wire responses that upstream
// filters may annotate before decode.
type MutableWireResponse interface {
	WireResponse
	// SetHeader replaces all values for name.
	SetHeader(name string, values ...string)
}

// ProduceProcessor decodes a raw response body into a typed value.
type ProduceProcessor interface {
	// MediaType returns the bare media type this processor handles.
	MediaType() string
	// DecodeResponse decodes body into a value of typ. A nil typ decodes into any.
	DecodeResponse(body []byte, typ reflect.Type) (any, error)
}

// RestOperation is the REST-specific description of an operation.
type RestOperation interface {
	// AbsolutePath returns the path template of the operation.
	AbsolutePath() string
	// Method returns the HTTP method.
	Method() string
	// Produces returns the media types the operation may answer with.
	Produces() []string
	// FindProduceProcessor returns the processor for a bare media type, or nil.
	FindProduceProcessor(mediaType string) ProduceProcessor
}

// OperationMeta is the static, shared description of an operation.
type OperationMeta interface {
	// Name returns the operation identifier.
	Name() string
	// ExtData returns extension data registered under key, or nil.
	ExtData(key string) any
	// FindResponseMeta returns the response description for a status code.
	FindResponseMeta(statusCode int) *domain.ResponseMeta
}

// Invocation is one in-flight remote call.
type Invocation interface {
	// ID returns the unique invocation identifier.
	ID() string
	// OperationMeta returns the operation being invoked.
	OperationMeta() OperationMeta
}

// ResponseFilter processes a wire response on its way back to the caller.
type ResponseFilter interface {
	// Name returns the unique identifier for this filter.
	Name() string
	// Order positions the filter in the chain; lower runs first.
	Order() int
	// AfterReceiveResponse returns a response to end the chain, or nil to continue.
	AfterReceiveResponse(ctx context.Context, inv Invocation, resp WireResponse) (*domain.Response, error)
}

// ResponseFilterChain runs response filters in order.
type ResponseFilterChain interface {
	// Run executes the filters until one of them produces a response.
	Run(ctx context.Context, inv Invocation, resp WireResponse) (*domain.Response, error)
}
