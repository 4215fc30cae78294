package codec

import (
	"fmt"
	"reflect"
)

var bytesType = reflect.TypeOf([]byte(nil))

// TextProcessor decodes text/plain bodies into a string or raw bytes.
type TextProcessor struct{}

// MediaType returns text/plain.
func (TextProcessor) MediaType() string {
	return MediaTypeText
}

// DecodeResponse returns the body as a string, or as bytes when typ is []byte.
func (TextProcessor) DecodeResponse(body []byte, typ reflect.Type) (any, error) {
	switch {
	case typ == nil:
		return string(body), nil
	case typ == bytesType:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case typ.Kind() == reflect.String:
		return reflect.ValueOf(string(body)).Convert(typ).Interface(), nil
	case typ.Kind() == reflect.Interface && typ.NumMethod() == 0:
		return string(body), nil
	default:
		return nil, fmt.Errorf("text/plain cannot decode into %s", typ)
	}
}
