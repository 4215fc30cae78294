package pipeline

import (
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// projectHeaders copies the headers declared in meta from resp.
// Names keep their declared spelling; values keep wire order and duplicates.
// Undeclared headers are dropped and declared-but-absent ones are skipped.
func projectHeaders(meta *domain.ResponseMeta, resp ports.WireResponse) *domain.Headers {
	headers := domain.NewHeaders()
	if meta == nil {
		return headers
	}

	for name := range meta.Headers {
		if values := resp.Headers(name); len(values) > 0 {
			headers.AddHeader(name, values...)
		}
	}
	return headers
}
