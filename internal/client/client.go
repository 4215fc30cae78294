// Package client invokes configured REST operations and runs the response
// chain over what comes back.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/definition"
	"github.com/tjfontaine/polyglot-rest-client/internal/pipeline"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

const tracerName = "github.com/tjfontaine/polyglot-rest-client/internal/client"

// RequestIDHeader carries the invocation ID to the remote side.
const RequestIDHeader = "X-Request-ID"

// ErrMissingPathParam is returned when a path template variable has no value.
var ErrMissingPathParam = errors.New("missing path parameter")

// Args are the per-call inputs of an invocation.
type Args struct {
	// Path fills {name} variables of the path template
	Path map[string]string

	// Query is appended to the request URL
	Query url.Values

	// Header is sent as-is, after the client's own headers
	Header http.Header

	// Body is sent verbatim; ContentType defaults to application/json when set
	Body        []byte
	ContentType string
}

// Client sends operations to one base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	chain      ports.ResponseFilterChain
	limiter    *rate.Limiter
	store      ports.InvocationStore
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithResponseChain sets the chain run over every wire response.
func WithResponseChain(chain ports.ResponseFilterChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.chain = chain
		}
	}
}

// WithRateLimit limits outgoing requests to r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithStore records every invocation outcome.
func WithStore(store ports.InvocationStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates a client for baseURL. Without WithResponseChain the chain holds
// only the decode stage.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chain == nil {
		c.chain = pipeline.NewExecutor(pipeline.NewDecodeStage(pipeline.WithDecodeLogger(c.logger)))
	}

	return c, nil
}

// Invoke sends op and returns the chain's response.
//
// A request that never produced a wire response yields a failed Response with
// a transport error and a nil error. Errors are returned for invalid arguments
// and for chain failures such as a body the selected processor cannot decode.
func (c *Client) Invoke(ctx context.Context, op *definition.OperationMeta, args Args) (*domain.Response, error) {
	if op == nil {
		return nil, fmt.Errorf("operation is required")
	}
	rest := op.RestOperation()
	if rest == nil {
		return nil, fmt.Errorf("operation %s has no REST metadata", op.Name())
	}

	path, err := ExpandPath(rest.AbsolutePath(), args.Path)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", op.Name(), err)
	}

	inv := definition.NewInvocation(op)
	ctx, span := c.tracer.Start(ctx, "client.invoke",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("operation", op.Name()),
			attribute.String("invocation.id", inv.ID()),
			attribute.String("http.method", rest.Method()),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	rec := &ports.InvocationRecord{
		ID:        inv.ID(),
		Operation: op.Name(),
		Method:    rest.Method(),
		Path:      path,
		CreatedAt: time.Now(),
	}

	resp, err := c.invoke(ctx, inv, rest, path, args, rec)
	rec.Duration = time.Since(rec.CreatedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rec.Failed = true
		rec.ErrorMessage = err.Error()
	} else {
		span.SetAttributes(attribute.Int("http.status_code", resp.Status))
		rec.StatusCode = resp.Status
		if resp.IsFailed() {
			span.SetStatus(codes.Error, string(resp.Err.Type))
			rec.Failed = true
			rec.ErrorType = string(resp.Err.Type)
			rec.ErrorMessage = resp.Err.Message()
		}
	}

	c.record(ctx, rec)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, inv *definition.Invocation, rest *definition.RestOperationMeta, path string, args Args, rec *ports.InvocationRecord) (*domain.Response, error) {
	req, err := c.newRequest(ctx, inv, rest, path, args)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.ConsumerFail(domain.ErrTransport(fmt.Sprintf("rate limit wait: %v", err))), nil
		}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "invocation transport failure",
			slog.String("invocation_id", inv.ID()),
			slog.String("operation", rec.Operation),
			slog.String("error", err.Error()),
		)
		return domain.ConsumerFail(domain.ErrTransport(err.Error())), nil
	}

	wire, err := transport.ReadResponse(httpResp, path)
	if err != nil {
		return domain.ConsumerFail(domain.ErrTransport(err.Error())), nil
	}
	rec.ContentType = wire.Header(transport.HeaderContentType)

	resp, err := c.chain.Run(ctx, inv, wire)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", rec.Operation, err)
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "invocation completed",
		slog.String("invocation_id", inv.ID()),
		slog.String("operation", rec.Operation),
		slog.Int("status", resp.Status),
		slog.Bool("failed", resp.IsFailed()),
	)
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, inv *definition.Invocation, rest *definition.RestOperationMeta, path string, args Args) (*http.Request, error) {
	var body io.Reader
	if args.Body != nil {
		body = bytes.NewReader(args.Body)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := strings.TrimSuffix(c.baseURL.String(), "/") + path
	req, err := http.NewRequestWithContext(ctx, rest.Method(), target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(args.Query) > 0 {
		req.URL.RawQuery = args.Query.Encode()
	}

	if produces := rest.Produces(); len(produces) > 0 {
		req.Header.Set("Accept", strings.Join(produces, ", "))
	}
	if args.Body != nil {
		contentType := args.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set(transport.HeaderContentType, contentType)
	}
	req.Header.Set(RequestIDHeader, inv.ID())

	for name, values := range args.Header {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return req, nil
}

func (c *Client) record(ctx context.Context, rec *ports.InvocationRecord) {
	if c.store == nil {
		return
	}
	// Recording must not fail the invocation.
	if err := c.store.SaveInvocation(context.WithoutCancel(ctx), rec); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "failed to record invocation",
			slog.String("invocation_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ExpandPath fills {name} variables in template with escaped values.
func ExpandPath(template string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := template

	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated variable in path %q", template)
		}
		end += open

		name := rest[open+1 : end]
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingPathParam, name)
		}

		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}

	return b.String(), nil
}
