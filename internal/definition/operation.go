// Package definition holds the static description of remote operations.
//
// An OperationMeta is built once (usually by a Registry from configuration)
// and shared by every invocation of that operation. Its REST-specific part,
// RestOperationMeta, is attached as extension data under
// ports.RestOperationKey so pipeline filters can find it without a hard
// dependency on this package.
package definition

import (
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// ResponsesMeta selects a ResponseMeta by status code.
type ResponsesMeta struct {
	byStatus map[int]*domain.ResponseMeta
	fallback *domain.ResponseMeta
}

// NewResponsesMeta creates an empty table whose default decodes into any.
func NewResponsesMeta() *ResponsesMeta {
	return &ResponsesMeta{
		byStatus: make(map[int]*domain.ResponseMeta),
		fallback: &domain.ResponseMeta{},
	}
}

// Add declares the response for a status code.
func (r *ResponsesMeta) Add(statusCode int, meta *domain.ResponseMeta) *ResponsesMeta {
	r.byStatus[statusCode] = meta
	return r
}

// SetDefault declares the response used for undeclared status codes.
func (r *ResponsesMeta) SetDefault(meta *domain.ResponseMeta) *ResponsesMeta {
	r.fallback = meta
	return r
}

// Find returns the response for statusCode, or the default.
func (r *ResponsesMeta) Find(statusCode int) *domain.ResponseMeta {
	if meta, ok := r.byStatus[statusCode]; ok {
		return meta
	}
	return r.fallback
}

// OperationMeta is the static, shared description of one operation.
// It must not be modified once invocations start using it.
type OperationMeta struct {
	name      string
	extData   map[string]any
	responses *ResponsesMeta
}

// NewOperationMeta creates an operation description.
func NewOperationMeta(name string, responses *ResponsesMeta) *OperationMeta {
	if responses == nil {
		responses = NewResponsesMeta()
	}
	return &OperationMeta{
		name:      name,
		extData:   make(map[string]any),
		responses: responses,
	}
}

// Name returns the operation identifier.
func (o *OperationMeta) Name() string {
	return o.name
}

// PutExtData registers extension data under key.
func (o *OperationMeta) PutExtData(key string, value any) *OperationMeta {
	o.extData[key] = value
	return o
}

// ExtData returns extension data registered under key, or nil.
func (o *OperationMeta) ExtData(key string) any {
	return o.extData[key]
}

// RestOperation returns the attached REST description, or nil.
func (o *OperationMeta) RestOperation() *RestOperationMeta {
	rest, _ := o.extData[ports.RestOperationKey].(*RestOperationMeta)
	return rest
}

// FindResponseMeta returns the response description for a status code.
func (o *OperationMeta) FindResponseMeta(statusCode int) *domain.ResponseMeta {
	return o.responses.Find(statusCode)
}

// Ensure OperationMeta implements the interface.
var _ ports.OperationMeta = (*OperationMeta)(nil)
