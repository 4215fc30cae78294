package definition

import (
	"fmt"
	"reflect"
	"strings"
)

var typeNames = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"bytes":  reflect.TypeOf([]byte(nil)),
	"int":    reflect.TypeOf(int64(0)),
	"float":  reflect.TypeOf(float64(0)),
	"bool":   reflect.TypeOf(false),
	"object": reflect.TypeOf(map[string]any(nil)),
	"array":  reflect.TypeOf([]any(nil)),
}

// TypeOf resolves a configured type name. "" and "any" resolve to nil,
// which processors treat as "decode into any".
func TypeOf(name string) (reflect.Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "any" {
		return nil, nil
	}
	if typ, ok := typeNames[name]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
