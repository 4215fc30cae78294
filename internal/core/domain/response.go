package domain

import "reflect"

// ResponseMeta describes what a response with a given status is expected to carry.
type ResponseMeta struct {
	// Type is the Go type the body decodes into. Nil decodes into any.
	Type reflect.Type

	// Headers maps each projected header name to its expected value type.
	Headers map[string]reflect.Type
}

// Response is the outcome of one invocation as seen by the caller.
// Exactly one of Result and Err is meaningful: constructors never set both.
type Response struct {
	Status  int
	Reason  string
	Result  any
	Err     *InvocationError
	Headers *Headers
}

// Create builds a successful response carrying a decoded value.
func Create(status int, reason string, result any) *Response {
	return &Response{
		Status:  status,
		Reason:  reason,
		Result:  result,
		Headers: NewHeaders(),
	}
}

// ConsumerFail builds a failed response from an invocation error.
// The response status mirrors the error status.
func ConsumerFail(err *InvocationError) *Response {
	return &Response{
		Status:  err.StatusCode,
		Err:     err,
		Headers: NewHeaders(),
	}
}

// IsFailed reports whether the response carries an error payload.
func (r *Response) IsFailed() bool {
	return r.Err != nil
}

// IsSucceed reports whether the response decoded with a 2xx status.
func (r *Response) IsSucceed() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}
