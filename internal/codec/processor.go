// Package codec provides the produce processors that decode response bodies.
//
// Each processor handles a single bare media type (no parameters). Processors
// are registered process-wide and looked up by operation definitions when
// building their media-type tables:
//   - application/json    → encoding/json
//   - text/plain          → raw string or bytes
//   - application/msgpack → vmihailenco/msgpack
//   - application/yaml    → gopkg.in/yaml.v3
package codec

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// Media types handled by the built-in processors.
const (
	MediaTypeJSON    = "application/json"
	MediaTypeText    = "text/plain"
	MediaTypeMsgpack = "application/msgpack"
	MediaTypeYAML    = "application/yaml"
)

var (
	processorMu   sync.RWMutex
	processorMap  = make(map[string]ports.ProduceProcessor)
	processorList []ports.ProduceProcessor
)

func init() {
	Register(JSONProcessor{})
	Register(TextProcessor{})
	Register(MsgpackProcessor{})
	Register(YAMLProcessor{})
}

// Register adds a processor for its media type.
// Panics if a processor with the same media type is already registered.
func Register(p ports.ProduceProcessor) {
	processorMu.Lock()
	defer processorMu.Unlock()

	mediaType := p.MediaType()
	if mediaType == "" {
		panic("produce processor media type cannot be empty")
	}
	if _, exists := processorMap[mediaType]; exists {
		panic(fmt.Sprintf("produce processor %q already registered", mediaType))
	}

	processorMap[mediaType] = p
	processorList = append(processorList, p)
}

// Lookup returns the processor registered for a bare media type.
func Lookup(mediaType string) (ports.ProduceProcessor, bool) {
	processorMu.RLock()
	defer processorMu.RUnlock()

	p, ok := processorMap[mediaType]
	return p, ok
}

// All returns every registered processor in registration order.
func All() []ports.ProduceProcessor {
	processorMu.RLock()
	defer processorMu.RUnlock()

	result := make([]ports.ProduceProcessor, len(processorList))
	copy(result, processorList)
	return result
}

// decodeInto allocates a value of typ, lets unmarshal fill it, and returns it.
// A nil typ decodes into an any.
func decodeInto(typ reflect.Type, unmarshal func(ptr any) error) (any, error) {
	if typ == nil {
		var v any
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		return v, nil
	}

	ptr := reflect.New(typ)
	if err := unmarshal(ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
