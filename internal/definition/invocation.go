package definition

import (
	"github.com/google/uuid"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// Invocation is one in-flight call of an operation.
type Invocation struct {
	id string
	op ports.OperationMeta
}

// NewInvocation creates an invocation with a fresh ID.
func NewInvocation(op ports.OperationMeta) *Invocation {
	return &Invocation{
		id: uuid.New().String(),
		op: op,
	}
}

// ID returns the invocation identifier.
func (i *Invocation) ID() string {
	return i.id
}

// OperationMeta returns the operation being invoked.
func (i *Invocation) OperationMeta() ports.OperationMeta {
	return i.op
}

// Ensure Invocation implements the interface.
var _ ports.Invocation = (*Invocation)(nil)
