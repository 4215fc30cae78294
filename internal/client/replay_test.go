package client

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/testutil"
)

func TestClient_Invoke_Replay(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "get_user")
	defer cleanup()

	c, err := New("https://api.example.com/v1",
		WithHTTPClient(testutil.VCRHTTPClient(recorder)),
		WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	op := mustOperation(t, config.OperationConfig{
		Name:     "getUser",
		Path:     "/users/{id}",
		Produces: []string{"application/json", "text/plain"},
		Responses: []config.ResponseConfig{
			{Status: 200, Type: "object", Headers: map[string]string{"X-Trace-Id": "string", "X-RateLimit-Remaining": "int"}},
			{Type: "string"},
		},
	})

	t.Run("json", func(t *testing.T) {
		resp, err := c.Invoke(context.Background(), op, Args{Path: map[string]string{"id": "42"}})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if !resp.IsSucceed() {
			t.Fatalf("unexpected failure: %+v", resp.Err)
		}

		want := map[string]any{"id": float64(42), "name": "Ada Lovelace", "roles": []any{"admin"}}
		if !reflect.DeepEqual(resp.Result, want) {
			t.Errorf("Result = %#v", resp.Result)
		}

		// Declared names keep their declared spelling.
		if got := resp.Headers.Header("X-Trace-Id"); !reflect.DeepEqual(got, []string{"7f3a9c"}) {
			t.Errorf("X-Trace-Id = %v", got)
		}
		if got := resp.Headers.Header("X-RateLimit-Remaining"); !reflect.DeepEqual(got, []string{"99"}) {
			t.Errorf("X-RateLimit-Remaining = %v", got)
		}
	})

	t.Run("default response", func(t *testing.T) {
		resp, err := c.Invoke(context.Background(), op, Args{Path: map[string]string{"id": "404"}})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if resp.Status != http.StatusNotFound || resp.Reason != "Not Found" {
			t.Errorf("status = %d %q", resp.Status, resp.Reason)
		}
		if resp.Result != "user 404 not found" {
			t.Errorf("Result = %#v", resp.Result)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		resp, err := c.Invoke(context.Background(), op, Args{Path: map[string]string{"id": "7"}})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if resp.Err == nil || resp.Err.Type != domain.ErrorTypeUnsupportedContentType {
			t.Fatalf("expected unsupported content type, got %+v", resp)
		}
		want := "path /users/7, statusCode 200, reasonPhrase OK, response content-type application/xml is not supported"
		if resp.Err.Message() != want {
			t.Errorf("message = %q", resp.Err.Message())
		}
	})
}
