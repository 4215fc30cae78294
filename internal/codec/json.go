package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONProcessor decodes application/json bodies.
type JSONProcessor struct{}

// MediaType returns application/json.
func (JSONProcessor) MediaType() string {
	return MediaTypeJSON
}

// DecodeResponse unmarshals body into typ. An empty body decodes to nil.
func (JSONProcessor) DecodeResponse(body []byte, typ reflect.Type) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	v, err := decodeInto(typ, func(ptr any) error {
		return json.Unmarshal(body, ptr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode json response: %w", err)
	}
	return v, nil
}
