package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

const (
	// DecodeStageName identifies the decode stage in the chain.
	DecodeStageName = "decode"

	tracerName = "github.com/tjfontaine/polyglot-rest-client/internal/pipeline"
)

// DecodeStage turns a wire response into the invocation's typed result.
// It holds no mutable state and is safe for concurrent use.
type DecodeStage struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// DecodeStageOption configures a DecodeStage.
type DecodeStageOption func(*DecodeStage)

// WithDecodeLogger sets the logger used for negotiation failures.
func WithDecodeLogger(logger *slog.Logger) DecodeStageOption {
	return func(s *DecodeStage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecodeTracer sets the tracer used for decode spans.
func WithDecodeTracer(tracer trace.Tracer) DecodeStageOption {
	return func(s *DecodeStage) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewDecodeStage creates the decode stage.
func NewDecodeStage(opts ...DecodeStageOption) *DecodeStage {
	s := &DecodeStage{
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage identifier.
func (s *DecodeStage) Name() string {
	return DecodeStageName
}

// Order returns math.MaxInt: decode runs after every other response filter.
func (s *DecodeStage) Order() int {
	return math.MaxInt
}

// FindProduceProcessor resolves the processor for the response Content-Type.
// Parameters after the first ';' are dropped before the lookup. A missing
// header or an unknown media type yields nil.
func (s *DecodeStage) FindProduceProcessor(rest ports.RestOperation, resp ports.WireResponse) ports.ProduceProcessor {
	if rest == nil {
		return nil
	}

	contentType := resp.Header(transport.HeaderContentType)
	if contentType == "" {
		return nil
	}

	mediaType, _, _ := strings.Cut(contentType, ";")
	return rest.FindProduceProcessor(strings.TrimSpace(mediaType))
}

// AfterReceiveResponse decodes resp for inv.
// An unsupported content type is returned as a failed response, never as an
// error. Errors from the processor itself are returned unchanged in meaning.
func (s *DecodeStage) AfterReceiveResponse(ctx context.Context, inv ports.Invocation, resp ports.WireResponse) (*domain.Response, error) {
	if resp == nil {
		resp = emptyWireResponse{}
	}

	var (
		opMeta ports.OperationMeta
		opName string
		rest   ports.RestOperation
	)
	if inv != nil {
		opMeta = inv.OperationMeta()
	}
	if opMeta != nil {
		opName = opMeta.Name()
		rest, _ = opMeta.ExtData(ports.RestOperationKey).(ports.RestOperation)
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.decode", trace.WithAttributes(
		attribute.String("rpc.operation", opName),
		attribute.Int("http.response.status_code", resp.StatusCode()),
	))
	defer span.End()

	processor := s.FindProduceProcessor(rest, resp)
	if processor == nil {
		out := unsupportedContentType(rest, resp)
		span.SetStatus(codes.Error, "unsupported content type")
		s.logger.LogAttrs(ctx, slog.LevelWarn, "unsupported response content type",
			slog.String("operation", opName),
			slog.Int("status", resp.StatusCode()),
			slog.String("content_type", resp.Header(transport.HeaderContentType)),
		)
		return out, nil
	}
	span.SetAttributes(attribute.String("http.response.media_type", processor.MediaType()))

	respMeta := opMeta.FindResponseMeta(resp.StatusCode())
	var typ reflect.Type
	if respMeta != nil {
		typ = respMeta.Type
	}

	result, err := processor.DecodeResponse(resp.Body(), typ)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("decode %s response: %w", processor.MediaType(), err)
	}

	out := domain.Create(resp.StatusCode(), resp.ReasonPhrase(), result)
	out.Headers = projectHeaders(respMeta, resp)
	return out, nil
}

// Ensure DecodeStage implements the interface.
var _ ports.ResponseFilter = (*DecodeStage)(nil)
