package definition

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/tjfontaine/polyglot-rest-client/internal/codec"
	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// Registry holds operation definitions by name.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*OperationMeta
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*OperationMeta)}
}

// NewRegistryFromConfig builds and registers every configured operation.
func NewRegistryFromConfig(ops []config.OperationConfig) (*Registry, error) {
	r := NewRegistry()
	for _, opCfg := range ops {
		op, err := BuildOperation(opCfg)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", opCfg.Name, err)
		}
		if err := r.Register(op); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an operation. Names must be unique.
func (r *Registry) Register(op *OperationMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[op.Name()]; exists {
		return fmt.Errorf("operation %q already registered", op.Name())
	}
	r.ops[op.Name()] = op
	return nil
}

// Get returns the operation registered under name.
func (r *Registry) Get(name string) (*OperationMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	return op, ok
}

// List returns all operations sorted by name.
func (r *Registry) List() []*OperationMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*OperationMeta, 0, len(r.ops))
	for _, op := range r.ops {
		result = append(result, op)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// BuildOperation turns an operation config into an OperationMeta with its
// RestOperationMeta attached. An empty produces list registers every known
// processor.
func BuildOperation(cfg config.OperationConfig) (*OperationMeta, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	var processors []ports.ProduceProcessor
	if len(cfg.Produces) == 0 {
		processors = codec.All()
	} else {
		for _, mediaType := range cfg.Produces {
			p, ok := codec.Lookup(mediaType)
			if !ok {
				return nil, fmt.Errorf("no produce processor for %q", mediaType)
			}
			processors = append(processors, p)
		}
	}

	responses := NewResponsesMeta()
	for _, respCfg := range cfg.Responses {
		meta, err := buildResponseMeta(respCfg)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", respCfg.Status, err)
		}
		if respCfg.Status == 0 {
			responses.SetDefault(meta)
		} else {
			responses.Add(respCfg.Status, meta)
		}
	}

	op := NewOperationMeta(cfg.Name, responses)
	op.PutExtData(ports.RestOperationKey, NewRestOperationMeta(cfg.Method, cfg.Path, processors...))
	return op, nil
}

func buildResponseMeta(cfg config.ResponseConfig) (*domain.ResponseMeta, error) {
	typ, err := TypeOf(cfg.Type)
	if err != nil {
		return nil, err
	}

	meta := &domain.ResponseMeta{
		Type:    typ,
		Headers: make(map[string]reflect.Type, len(cfg.Headers)),
	}
	for name, typeName := range cfg.Headers {
		headerType, err := TypeOf(typeName)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", name, err)
		}
		meta.Headers[name] = headerType
	}
	return meta, nil
}
