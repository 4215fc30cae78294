package codec

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackProcessor decodes application/msgpack bodies.
type MsgpackProcessor struct{}

// MediaType returns application/msgpack.
func (MsgpackProcessor) MediaType() string {
	return MediaTypeMsgpack
}

// DecodeResponse unmarshals body into typ. An empty body decodes to nil.
func (MsgpackProcessor) DecodeResponse(body []byte, typ reflect.Type) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	v, err := decodeInto(typ, func(ptr any) error {
		return msgpack.Unmarshal(body, ptr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack response: %w", err)
	}
	return v, nil
}
