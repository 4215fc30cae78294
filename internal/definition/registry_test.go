package definition

import (
	"reflect"
	"testing"

	"github.com/tjfontaine/polyglot-rest-client/internal/codec"
	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name    string
		want    reflect.Type
		wantErr bool
	}{
		{name: "", want: nil},
		{name: "any", want: nil},
		{name: "String", want: reflect.TypeOf("")},
		{name: "object", want: reflect.TypeOf(map[string]any(nil))},
		{name: "array", want: reflect.TypeOf([]any(nil))},
		{name: "int", want: reflect.TypeOf(int64(0))},
		{name: "widget", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TypeOf(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("TypeOf(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestResponsesMeta_Find(t *testing.T) {
	ok := &domain.ResponseMeta{Type: reflect.TypeOf("")}
	fallback := &domain.ResponseMeta{}

	responses := NewResponsesMeta().Add(200, ok).SetDefault(fallback)

	if got := responses.Find(200); got != ok {
		t.Error("expected declared meta for 200")
	}
	if got := responses.Find(404); got != fallback {
		t.Error("expected default meta for undeclared status")
	}
	if got := NewResponsesMeta().Find(500); got == nil || got.Type != nil {
		t.Error("expected empty default meta decoding into any")
	}
}

func TestRestOperationMeta_FindProduceProcessor(t *testing.T) {
	rest := NewRestOperationMeta("post", "/users", codec.JSONProcessor{}, codec.TextProcessor{}, codec.JSONProcessor{})

	if rest.Method() != "POST" {
		t.Errorf("Method() = %q, want POST", rest.Method())
	}
	if got := rest.FindProduceProcessor("application/json"); got == nil {
		t.Error("expected json processor")
	}
	if got := rest.FindProduceProcessor("Application/JSON"); got != nil {
		t.Error("lookup must be case-sensitive")
	}
	if got := rest.FindProduceProcessor("application/xml"); got != nil {
		t.Error("expected nil for unregistered media type")
	}
	if got := rest.Produces(); !reflect.DeepEqual(got, []string{"application/json", "text/plain"}) {
		t.Errorf("Produces() = %v", got)
	}
}

func TestBuildOperation(t *testing.T) {
	op, err := BuildOperation(config.OperationConfig{
		Name:     "getUser",
		Method:   "GET",
		Path:     "/users/{id}",
		Produces: []string{"application/json"},
		Responses: []config.ResponseConfig{
			{Status: 200, Type: "object", Headers: map[string]string{"X-Trace": "string"}},
			{Status: 0, Type: "string"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rest, ok := op.ExtData(ports.RestOperationKey).(ports.RestOperation)
	if !ok {
		t.Fatal("expected rest operation extension")
	}
	if rest.AbsolutePath() != "/users/{id}" {
		t.Errorf("AbsolutePath() = %q", rest.AbsolutePath())
	}
	if rest.FindProduceProcessor("text/plain") != nil {
		t.Error("only declared media types should be registered")
	}
	if op.RestOperation() == nil {
		t.Error("RestOperation() should return the attached meta")
	}

	meta := op.FindResponseMeta(200)
	if meta.Type != reflect.TypeOf(map[string]any(nil)) {
		t.Errorf("200 type = %v", meta.Type)
	}
	if _, ok := meta.Headers["X-Trace"]; !ok {
		t.Error("expected X-Trace header declared")
	}
	if op.FindResponseMeta(500).Type != reflect.TypeOf("") {
		t.Error("expected default response for 500")
	}
}

func TestBuildOperation_DefaultProduces(t *testing.T) {
	op, err := BuildOperation(config.OperationConfig{Name: "ping", Path: "/ping"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rest := op.RestOperation()
	for _, p := range codec.All() {
		if rest.FindProduceProcessor(p.MediaType()) == nil {
			t.Errorf("expected %s registered by default", p.MediaType())
		}
	}
	if rest.Method() != "GET" {
		t.Errorf("default method = %q, want GET", rest.Method())
	}
}

func TestBuildOperation_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.OperationConfig
	}{
		{name: "missing name", cfg: config.OperationConfig{Path: "/x"}},
		{name: "missing path", cfg: config.OperationConfig{Name: "x"}},
		{name: "unknown media type", cfg: config.OperationConfig{Name: "x", Path: "/x", Produces: []string{"application/xml"}}},
		{name: "unknown type", cfg: config.OperationConfig{Name: "x", Path: "/x", Responses: []config.ResponseConfig{{Status: 200, Type: "widget"}}}},
		{name: "unknown header type", cfg: config.OperationConfig{Name: "x", Path: "/x", Responses: []config.ResponseConfig{{Status: 200, Headers: map[string]string{"a": "widget"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildOperation(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistryFromConfig([]config.OperationConfig{
		{Name: "b", Path: "/b"},
		{Name: "a", Path: "/a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := r.Get("a"); !ok {
		t.Error("expected operation a")
	}
	list := r.List()
	if len(list) != 2 || list[0].Name() != "a" || list[1].Name() != "b" {
		t.Errorf("List() not sorted: %v", list)
	}

	if err := r.Register(NewOperationMeta("a", nil)); err == nil {
		t.Error("expected duplicate registration error")
	}

	if _, err := NewRegistryFromConfig([]config.OperationConfig{{Name: "a", Path: "/a"}, {Name: "a", Path: "/a"}}); err == nil {
		t.Error("expected duplicate error from config")
	}
}

func TestNewInvocation(t *testing.T) {
	op := NewOperationMeta("ping", nil)
	first := NewInvocation(op)
	second := NewInvocation(op)

	if first.ID() == "" || first.ID() == second.ID() {
		t.Errorf("expected unique IDs, got %q and %q", first.ID(), second.ID())
	}
	if first.OperationMeta() != op {
		t.Error("expected invocation to expose its operation")
	}
}
