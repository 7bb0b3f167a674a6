package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema is message content schema interface
type Schema interface {
	String() string
}

// Stringify returns the text form of a schema, nil safe
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	return s.String()
}

// ToBytes returns the text form of a schema as bytes
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}

// JSON marshals v ignoring errors, used by String() implementations
func JSON(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

// Reflect generates a self-contained JSON schema for T.
// Additional properties are disallowed and definitions are inlined so the
// result can be used as a strict structured output or tool parameter schema.
func Reflect[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	ret := reflector.Reflect(v)
	ret.Version = ""
	return ret
}
