package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/transport"
)

// WebhookAction is the decision returned by a webhook.
type WebhookAction string

const (
	// ActionAllow lets the response continue unchanged.
	ActionAllow WebhookAction = "allow"
	// ActionDeny ends the chain with a denied response.
	ActionDeny WebhookAction = "deny"
	// ActionMutate sets the returned headers on the wire response.
	ActionMutate WebhookAction = "mutate"
)

// WebhookInput is the data sent to a webhook.
type WebhookInput struct {
	Phase        string          `json:"phase"`
	InvocationID string          `json:"invocation_id"`
	Operation    string          `json:"operation"`
	Response     WebhookResponse `json:"response"`
}

// WebhookResponse summarizes the wire response for a webhook.
type WebhookResponse struct {
	StatusCode   int                 `json:"status_code"`
	ReasonPhrase string              `json:"reason_phrase"`
	Path         string              `json:"path"`
	Headers      map[string][]string `json:"headers,omitempty"`
}

// WebhookOutput is returned from a webhook.
type WebhookOutput struct {
	Action     WebhookAction       `json:"action"`
	Headers    map[string][]string `json:"headers,omitempty"`
	DenyReason string              `json:"deny_reason,omitempty"`
}

// WebhookStage calls an external HTTP endpoint before the response is decoded.
type WebhookStage struct {
	name    string
	order   int
	url     string
	onError WebhookAction // Action to take on error (allow or deny)
	retries int
	headers map[string]string
	client  *http.Client
}

// WebhookStageConfig configures a webhook stage.
type WebhookStageConfig struct {
	Name    string
	Order   int
	URL     string
	Timeout time.Duration
	OnError WebhookAction // "allow" or "deny" (default: deny)
	Retries int           // Negative counts as zero
	Headers map[string]string
	Client  *http.Client // Optional; built from Timeout when nil
}

// NewWebhookStage creates a new webhook stage.
func NewWebhookStage(cfg WebhookStageConfig) *WebhookStage {
	onError := cfg.OnError
	if onError == "" {
		onError = ActionDeny // Default to fail-closed
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &WebhookStage{
		name:    cfg.Name,
		order:   cfg.Order,
		url:     cfg.URL,
		onError: onError,
		retries: retries,
		headers: cfg.Headers,
		client:  client,
	}
}

// Name returns the stage identifier.
func (s *WebhookStage) Name() string {
	return s.name
}

// Order returns the configured position in the chain.
func (s *WebhookStage) Order() int {
	return s.order
}

// AfterReceiveResponse consults the webhook. Allow and mutate continue the
// chain; deny ends it with a denied response.
func (s *WebhookStage) AfterReceiveResponse(ctx context.Context, inv ports.Invocation, resp ports.WireResponse) (*domain.Response, error) {
	in := s.buildInput(inv, resp)

	var (
		output  *WebhookOutput
		lastErr error
	)

	// Retry loop
	attempts := s.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		output, lastErr = s.doRequest(ctx, in)
		if lastErr == nil {
			break
		}

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		var err error
		output, err = s.handleError(lastErr)
		if err != nil {
			return nil, err
		}
	}

	switch output.Action {
	case ActionDeny:
		reason := output.DenyReason
		if reason == "" {
			reason = "denied by response filter " + s.name
		}
		return domain.ConsumerFail(domain.ErrDenied(domain.StatusConsumerFail, reason)), nil
	case ActionMutate:
		mutable, ok := resp.(ports.MutableWireResponse)
		if !ok {
			return nil, fmt.Errorf("webhook stage %s: response does not accept header mutations", s.name)
		}
		for name, values := range output.Headers {
			mutable.SetHeader(name, values...)
		}
	case ActionAllow:
		// Continue with current response
	}

	return nil, nil
}

func (s *WebhookStage) buildInput(inv ports.Invocation, resp ports.WireResponse) *WebhookInput {
	in := &WebhookInput{
		Phase: "response",
		Response: WebhookResponse{
			StatusCode:   resp.StatusCode(),
			ReasonPhrase: resp.ReasonPhrase(),
			Path:         resp.RequestPath(),
		},
	}
	if inv != nil {
		in.InvocationID = inv.ID()
		if op := inv.OperationMeta(); op != nil {
			in.Operation = op.Name()
		}
	}
	if hm, ok := resp.(interface{ HeaderMap() http.Header }); ok {
		in.Response.Headers = hm.HeaderMap()
	}
	return in
}

func (s *WebhookStage) doRequest(ctx context.Context, in *WebhookInput) (*WebhookOutput, error) {
	// Marshal input
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook input: %w", err)
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(transport.HeaderContentType, "application/json")
	req.Header.Set("Accept", "application/json")

	// Add custom headers
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	// Execute request
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Check HTTP status
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse output
	var output WebhookOutput
	if err := json.Unmarshal(respBody, &output); err != nil {
		return nil, fmt.Errorf("unmarshal webhook output: %w", err)
	}

	// Validate action
	switch output.Action {
	case ActionAllow, ActionDeny, ActionMutate:
		// Valid
	case "":
		output.Action = ActionAllow // Default to allow if not specified
	default:
		return nil, fmt.Errorf("invalid action from webhook: %s", output.Action)
	}

	return &output, nil
}

func (s *WebhookStage) handleError(err error) (*WebhookOutput, error) {
	switch s.onError {
	case ActionAllow:
		// Fail-open
		return &WebhookOutput{Action: ActionAllow}, nil
	case ActionDeny:
		// Fail-closed: deny with the error as reason
		return &WebhookOutput{
			Action:     ActionDeny,
			DenyReason: fmt.Sprintf("webhook error: %v", err),
		}, nil
	default:
		// Unknown onError, fail-closed for safety
		return nil, fmt.Errorf("webhook stage %s failed: %w", s.name, err)
	}
}

// Ensure WebhookStage implements the interface.
var _ ports.ResponseFilter = (*WebhookStage)(nil)
