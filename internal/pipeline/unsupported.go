package pipeline

import (
	"fmt"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

const nullPlaceholder = "null"

// unsupportedContentType builds the failed response for a negotiation failure.
// Fields that were never populated render as null; the status stays 0 when unset.
func unsupportedContentType(rest ports.RestOperation, resp ports.WireResponse) *domain.Response {
	path := resp.RequestPath()
	if path == "" && rest != nil {
		path = rest.AbsolutePath()
	}

	msg := fmt.Sprintf("path %s, statusCode %d, reasonPhrase %s, response content-type %s is not supported",
		orNull(path),
		resp.StatusCode(),
		orNull(resp.ReasonPhrase()),
		orNull(resp.Header(transport.HeaderContentType)),
	)

	return domain.ConsumerFail(domain.ErrUnsupportedContentType(resp.StatusCode(), msg))
}

func orNull(s string) string {
	if s == "" {
		return nullPlaceholder
	}
	return s
}

// emptyWireResponse stands in for a response that was never populated.
type emptyWireResponse struct{}

func (emptyWireResponse) StatusCode() int              { return 0 }
func (emptyWireResponse) ReasonPhrase() string         { return "" }
func (emptyWireResponse) RequestPath() string          { return "" }
func (emptyWireResponse) Header(name string) string    { return "" }
func (emptyWireResponse) Headers(name string) []string { return nil }
func (emptyWireResponse) Body() []byte                 { return nil }
