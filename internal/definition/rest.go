package definition

import (
	"net/http"
	"strings"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// RestOperationMeta maps bare media types to produce processors for one operation.
// Lookups are exact and case-sensitive.
type RestOperationMeta struct {
	method     string
	path       string
	produces   []string
	processors map[string]ports.ProduceProcessor
}

// NewRestOperationMeta creates the REST description of an operation.
// The first processor for a media type wins.
func NewRestOperationMeta(method, path string, processors ...ports.ProduceProcessor) *RestOperationMeta {
	if method == "" {
		method = http.MethodGet
	}

	r := &RestOperationMeta{
		method:     strings.ToUpper(method),
		path:       path,
		processors: make(map[string]ports.ProduceProcessor, len(processors)),
	}
	for _, p := range processors {
		if _, exists := r.processors[p.MediaType()]; exists {
			continue
		}
		r.processors[p.MediaType()] = p
		r.produces = append(r.produces, p.MediaType())
	}
	return r
}

// Method returns the HTTP method.
func (r *RestOperationMeta) Method() string {
	return r.method
}

// AbsolutePath returns the path template, e.g. /users/{id}.
func (r *RestOperationMeta) AbsolutePath() string {
	return r.path
}

// Produces returns the registered media types in declaration order.
func (r *RestOperationMeta) Produces() []string {
	out := make([]string, len(r.produces))
	copy(out, r.produces)
	return out
}

// FindProduceProcessor returns the processor for a bare media type, or nil.
func (r *RestOperationMeta) FindProduceProcessor(mediaType string) ports.ProduceProcessor {
	return r.processors[mediaType]
}

// Ensure RestOperationMeta implements the interface.
var _ ports.RestOperation = (*RestOperationMeta)(nil)
