// Package domain provides the canonical value types produced by the client pipeline.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of an invocation error.
type ErrorType string

const (
	// ErrorTypeUnsupportedContentType indicates no produce processor matched the response.
	ErrorTypeUnsupportedContentType ErrorType = "unsupported_content_type"

	// ErrorTypeDenied indicates a response filter rejected the response.
	ErrorTypeDenied ErrorType = "denied"

	// ErrorTypeTransport indicates the request never produced a wire response.
	ErrorTypeTransport ErrorType = "transport"

	// ErrorTypeServer indicates the remote side returned an error payload.
	ErrorTypeServer ErrorType = "server"
)

// StatusConsumerFail is used when a failure has no wire status to report.
const StatusConsumerFail = 490

// CommonExceptionData is the generic error payload carried by an InvocationError.
type CommonExceptionData struct {
	Message string `json:"message"`
}

func (d *CommonExceptionData) String() string {
	return d.Message
}

// InvocationError is the structured failure attached to a Response.
type InvocationError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// StatusCode is the status the failure is reported under
	StatusCode int `json:"status_code"`

	// Data is the error payload, usually *CommonExceptionData
	Data any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Type, e.StatusCode, e.Message())
}

// Message returns the human-readable message of the payload, if any.
func (e *InvocationError) Message() string {
	switch d := e.Data.(type) {
	case nil:
		return ""
	case *CommonExceptionData:
		return d.Message
	case CommonExceptionData:
		return d.Message
	case string:
		return d
	case error:
		return d.Error()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// HTTPStatusCode returns the status to surface for this error.
func (e *InvocationError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeUnsupportedContentType, ErrorTypeDenied, ErrorTypeTransport:
		return StatusConsumerFail
	default:
		return http.StatusInternalServerError
	}
}

// NewInvocationError creates a new invocation error.
func NewInvocationError(errType ErrorType, statusCode int, data any) *InvocationError {
	return &InvocationError{
		Type:       errType,
		StatusCode: statusCode,
		Data:       data,
	}
}

// WithStatusCode sets the reported status code.
func (e *InvocationError) WithStatusCode(code int) *InvocationError {
	e.StatusCode = code
	return e
}

// WithData replaces the error payload.
func (e *InvocationError) WithData(data any) *InvocationError {
	e.Data = data
	return e
}

// ErrUnsupportedContentType creates the negotiation failure error.
func ErrUnsupportedContentType(statusCode int, message string) *InvocationError {
	return NewInvocationError(ErrorTypeUnsupportedContentType, statusCode, &CommonExceptionData{Message: message})
}

// ErrDenied creates an error for a response rejected by a filter.
func ErrDenied(statusCode int, reason string) *InvocationError {
	return NewInvocationError(ErrorTypeDenied, statusCode, &CommonExceptionData{Message: reason})
}

// ErrTransport creates an error for a request that failed before a response arrived.
func ErrTransport(message string) *InvocationError {
	return NewInvocationError(ErrorTypeTransport, StatusConsumerFail, &CommonExceptionData{Message: message})
}
