package pipeline

import (
	"context"
	"net/http"
	"reflect"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// mockWireResponse is a wire response whose fields default to "never populated".
type mockWireResponse struct {
	status int
	reason string
	path   string
	header http.Header
	body   []byte
}

func (r *mockWireResponse) StatusCode() int      { return r.status }
func (r *mockWireResponse) ReasonPhrase() string { return r.reason }
func (r *mockWireResponse) RequestPath() string  { return r.path }
func (r *mockWireResponse) Body() []byte         { return r.body }

func (r *mockWireResponse) Header(name string) string {
	return r.header.Get(name)
}

func (r *mockWireResponse) Headers(name string) []string {
	return r.header.Values(name)
}

// mutableWireResponse adds header mutation to mockWireResponse.
type mutableWireResponse struct {
	mockWireResponse
}

func (r *mutableWireResponse) SetHeader(name string, values ...string) {
	if r.header == nil {
		r.header = make(http.Header)
	}
	r.header.Del(name)
	for _, v := range values {
		r.header.Add(name, v)
	}
}

func (r *mutableWireResponse) HeaderMap() http.Header {
	return r.header.Clone()
}

type decodeCall struct {
	body []byte
	typ  reflect.Type
}

// mockProcessor records decode calls and returns configured results.
type mockProcessor struct {
	mediaType string
	result    any
	err       error
	calls     []decodeCall
}

func (p *mockProcessor) MediaType() string { return p.mediaType }

func (p *mockProcessor) DecodeResponse(body []byte, typ reflect.Type) (any, error) {
	p.calls = append(p.calls, decodeCall{body: body, typ: typ})
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// mockRestOperation records the media types it was asked for.
type mockRestOperation struct {
	path       string
	processors map[string]ports.ProduceProcessor
	lookups    []string
}

func (r *mockRestOperation) AbsolutePath() string { return r.path }
func (r *mockRestOperation) Method() string       { return http.MethodGet }
func (r *mockRestOperation) Produces() []string   { return nil }

func (r *mockRestOperation) FindProduceProcessor(mediaType string) ports.ProduceProcessor {
	r.lookups = append(r.lookups, mediaType)
	if p, ok := r.processors[mediaType]; ok {
		return p
	}
	return nil
}

// mockOperationMeta returns fixed extension data and response metadata.
type mockOperationMeta struct {
	name         string
	extData      map[string]any
	responseMeta *domain.ResponseMeta
	statusLookup []int
}

func (o *mockOperationMeta) Name() string { return o.name }

func (o *mockOperationMeta) ExtData(key string) any {
	return o.extData[key]
}

func (o *mockOperationMeta) FindResponseMeta(statusCode int) *domain.ResponseMeta {
	o.statusLookup = append(o.statusLookup, statusCode)
	return o.responseMeta
}

type mockInvocation struct {
	id string
	op ports.OperationMeta
}

func (i *mockInvocation) ID() string                         { return i.id }
func (i *mockInvocation) OperationMeta() ports.OperationMeta { return i.op }

// mockFilter is a test helper that records calls and returns configured responses.
type mockFilter struct {
	name   string
	order  int
	output *domain.Response
	err    error
	calls  int
	trace  *[]string
}

func (f *mockFilter) Name() string { return f.name }
func (f *mockFilter) Order() int   { return f.order }

func (f *mockFilter) AfterReceiveResponse(ctx context.Context, inv ports.Invocation, resp ports.WireResponse) (*domain.Response, error) {
	f.calls++
	if f.trace != nil {
		*f.trace = append(*f.trace, f.name)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}
