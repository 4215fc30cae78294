package codec

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// YAMLProcessor decodes application/yaml bodies.
type YAMLProcessor struct{}

// MediaType returns application/yaml.
func (YAMLProcessor) MediaType() string {
	return MediaTypeYAML
}

// DecodeResponse unmarshals body into typ. An empty body decodes to nil.
func (YAMLProcessor) DecodeResponse(body []byte, typ reflect.Type) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	v, err := decodeInto(typ, func(ptr any) error {
		return yaml.Unmarshal(body, ptr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode yaml response: %w", err)
	}
	return v, nil
}
