package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/polyglot-rest-client/internal/client"
	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestUpstream serves a vendor media type plus a webhook that rewrites it.
func newTestUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/v1/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.acme+json")
		w.Header().Set("X-Widget-Version", "3")
		fmt.Fprintf(w, `{"id":%q}`, chi.URLParam(req, "id"))
	})
	r.Post("/hooks/normalize", func(w http.ResponseWriter, req *http.Request) {
		var in pipeline.WebhookInput
		json.NewDecoder(req.Body).Decode(&in)

		out := pipeline.WebhookOutput{Action: pipeline.ActionAllow}
		if in.Response.Headers["Content-Type"][0] == "application/vnd.acme+json" {
			out = pipeline.WebhookOutput{
				Action:  pipeline.ActionMutate,
				Headers: map[string][]string{"Content-Type": {"application/json"}},
			}
		}
		json.NewEncoder(w).Encode(out)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Client: config.ClientConfig{BaseURL: baseURL + "/v1", Timeout: "5s"},
		Pipeline: config.PipelineConfig{Stages: []config.PipelineStageConfig{
			{Name: "normalize", Order: 10, URL: baseURL + "/hooks/normalize"},
		}},
		Operations: []config.OperationConfig{
			{
				Name:     "getWidget",
				Path:     "/widgets/{id}",
				Produces: []string{"application/json"},
				Responses: []config.ResponseConfig{
					{Status: 200, Type: "object", Headers: map[string]string{"X-Widget-Version": "string"}},
				},
			},
			{Name: "listWidgets", Path: "/widgets"},
		},
	}
}

func TestRuntime_New_RequiredOptions(t *testing.T) {
	_, err := New()
	if err == nil || err.Error() != "config required (use WithFileConfig or WithConfig)" {
		t.Errorf("unexpected error: %v", err)
	}

	_, err = New(WithConfig(&config.Config{}))
	if err == nil {
		t.Error("expected error without base url")
	}

	cfg := testConfig("http://localhost")
	cfg.Operations = append(cfg.Operations, config.OperationConfig{Name: "getWidget", Path: "/dup"})
	if _, err := New(WithConfig(cfg), WithMemoryStore()); err == nil {
		t.Error("expected error for duplicate operation")
	}

	cfg = testConfig("http://localhost")
	cfg.Client.Timeout = "eventually"
	if _, err := New(WithConfig(cfg), WithMemoryStore()); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestRuntime_Invoke(t *testing.T) {
	srv := newTestUpstream(t)

	rt, err := New(WithConfig(testConfig(srv.URL)), WithMemoryStore(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	resp, err := rt.Invoke(context.Background(), "getWidget", client.Args{Path: map[string]string{"id": "w-1"}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !resp.IsSucceed() {
		t.Fatalf("expected success after webhook normalized content type, got %+v", resp.Err)
	}
	if !reflect.DeepEqual(resp.Result, map[string]any{"id": "w-1"}) {
		t.Errorf("Result = %#v", resp.Result)
	}
	if resp.Headers.First("X-Widget-Version") != "3" {
		t.Errorf("X-Widget-Version = %v", resp.Headers.HeaderMap())
	}

	history, err := rt.History(context.Background(), ports.ListOptions{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].Operation != "getWidget" {
		t.Fatalf("unexpected history: %+v", history)
	}

	rec, err := rt.Invocation(context.Background(), history[0].ID)
	if err != nil {
		t.Fatalf("Invocation() error = %v", err)
	}
	if rec.Path != "/widgets/w-1" || rec.ContentType != "application/vnd.acme+json" {
		t.Errorf("unexpected record: %+v", rec)
	}

	if _, err := rt.Invocation(context.Background(), "missing"); !errors.Is(err, ports.ErrInvocationNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if _, err := rt.Invoke(context.Background(), "deleteWidget", client.Args{}); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestRuntime_Operations(t *testing.T) {
	rt, err := New(WithConfig(testConfig("http://localhost")), WithMemoryStore())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	ops := rt.Operations()
	if len(ops) != 2 || ops[0].Name() != "getWidget" || ops[1].Name() != "listWidgets" {
		t.Errorf("unexpected operations: %v", ops)
	}
}

func TestRuntime_HistoryDisabled(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Storage.Type = "none"

	rt, err := New(WithConfig(cfg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	if _, err := rt.History(context.Background(), ports.ListOptions{}); err == nil {
		t.Error("expected error when storage is disabled")
	}
}

func TestRuntime_WithFileConfig(t *testing.T) {
	srv := newTestUpstream(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := fmt.Sprintf(`
client:
  base_url: ${WIDGETS_URL}/v1
storage:
  type: sqlite
  sqlite:
    path: %s
operations:
  - name: getWidget
    path: /widgets/{id}
    produces: [application/json]
`, filepath.Join(tmpDir, "history.db"))
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WIDGETS_URL", srv.URL)

	rt, err := New(WithFileConfig(configPath), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	// No webhook here, so the vendor media type is not negotiable.
	resp, err := rt.Invoke(context.Background(), "getWidget", client.Args{Path: map[string]string{"id": "w-2"}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !resp.IsFailed() {
		t.Fatalf("expected unsupported content type, got %+v", resp)
	}

	history, err := rt.History(context.Background(), ports.ListOptions{Operation: "getWidget"})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || !history[0].Failed {
		t.Errorf("unexpected history: %+v", history)
	}
}
