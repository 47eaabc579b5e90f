// Package schema provides external validation of filter input.
//
// A Validator receives the flat mapping of field input keys to raw values.
// When a filter is configured with a Validator it replaces field coercion
// entirely, and the error it returns reaches the caller unwrapped.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator validates filter input.
// Implementations MUST be goroutine-safe.
type Validator interface {
	Validate(values map[string]any) error
}

// Func adapts a function to Validator.
type Func func(values map[string]any) error

// Validate implements Validator interface.
func (f Func) Validate(values map[string]any) error {
	return f(values)
}

// RootKey holds messages that do not belong to a single property.
const RootKey = "_schema"

// Error reports input rejected by a schema, keyed by property.
type Error struct {
	Messages map[string][]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, k := range e.Fields() {
		parts = append(parts, k+": "+strings.Join(e.Messages[k], "; "))
	}
	return "schema validation failed: " + strings.Join(parts, ", ")
}

// Fields returns the names of the rejected properties in order.
func (e *Error) Fields() []string {
	return slices.Sorted(maps.Keys(e.Messages))
}

// JSONSchema validates input against a compiled JSON Schema document.
type JSONSchema struct {
	schema *gojsonschema.Schema
}

var _ Validator = (*JSONSchema)(nil)

// NewJSONSchema compiles a JSON Schema document.
func NewJSONSchema(source []byte) (*JSONSchema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(source))
	if err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}
	return &JSONSchema{schema: compiled}, nil
}

// MustJSONSchema is NewJSONSchema that panics on error.
func MustJSONSchema(source string) *JSONSchema {
	s, err := NewJSONSchema([]byte(source))
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements Validator interface.
// Returns *Error if values do not match the schema.
func (s *JSONSchema) Validate(values map[string]any) error {
	if values == nil {
		values = map[string]any{}
	}
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(values))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	messages := make(map[string][]string)
	for _, desc := range result.Errors() {
		key := propertyKey(desc)
		messages[key] = append(messages[key], desc.Description())
	}
	return &Error{Messages: messages}
}

// propertyKey returns the dotted property path an error refers to.
func propertyKey(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = ""
	}
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == "" {
				return prop
			}
			return field + "." + prop
		}
	}
	if field == "" {
		return RootKey
	}
	return field
}
