package completion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema used as the contract for a completion
// input or output.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles a raw JSON Schema document. The name is used in
// error messages only.
func CompileSchema(name, raw string) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema that panics on error. Intended for
// package-level schema constants that are fixed at build time.
func MustCompileSchema(name, raw string) *Schema {
	s, err := CompileSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema's diagnostic name.
func (s *Schema) Name() string { return s.name }

// Validate checks a decoded JSON value against the schema.
func (s *Schema) Validate(v any) error {
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}
	return nil
}

// ValidateValue marshals an arbitrary Go value to JSON and validates the
// result. Used for caller-supplied input values.
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}
	decoded, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}
	return s.Validate(decoded)
}
