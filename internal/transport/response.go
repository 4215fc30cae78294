// Package transport turns net/http responses into buffered wire responses
// and builds the instrumented round tripper the client sends through.
package transport

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// HeaderContentType is the header naming the media type of a body.
const HeaderContentType = "Content-Type"

// Response is a fully buffered wire response.
// Header lookups are case-insensitive; SetHeader lets upstream filters
// annotate the response before decode.
type Response struct {
	statusCode int
	reason     string
	path       string
	header     http.Header
	body       []byte
}

// NewResponse creates a wire response from already buffered parts.
func NewResponse(statusCode int, reason, path string, header http.Header, body []byte) *Response {
	h := make(http.Header, len(header))
	for name, values := range header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return &Response{
		statusCode: statusCode,
		reason:     reason,
		path:       path,
		header:     h,
		body:       body,
	}
}

// ReadResponse buffers resp's body and closes it.
func ReadResponse(resp *http.Response, path string) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return NewResponse(resp.StatusCode, reasonPhrase(resp), path, resp.Header, body), nil
}

// reasonPhrase extracts "OK" from a Status like "200 OK".
func reasonPhrase(resp *http.Response) string {
	if code, reason, ok := strings.Cut(resp.Status, " "); ok {
		if _, err := strconv.Atoi(code); err == nil {
			return reason
		}
	}
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

func (r *Response) StatusCode() int      { return r.statusCode }
func (r *Response) ReasonPhrase() string { return r.reason }
func (r *Response) RequestPath() string  { return r.path }
func (r *Response) Body() []byte         { return r.body }

// Header returns the first value for name, or "".
func (r *Response) Header(name string) string {
	return r.header.Get(name)
}

// Headers returns a copy of every value for name in wire order.
func (r *Response) Headers(name string) []string {
	values := r.header.Values(name)
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// SetHeader replaces all values for name.
func (r *Response) SetHeader(name string, values ...string) {
	r.header.Del(name)
	for _, v := range values {
		r.header.Add(name, v)
	}
}

// HeaderMap returns a copy of all headers.
func (r *Response) HeaderMap() http.Header {
	return r.header.Clone()
}

// Ensure Response implements the interface.
var _ ports.MutableWireResponse = (*Response)(nil)
