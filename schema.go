package schemadiff

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Schema is the subset of JSON Schema the planner interprets: reference and
// composition keywords, object and array applicators, and the validation
// keywords that drive array matching heuristics. Unknown keywords are
// ignored.
type Schema struct {
	ID     string             `json:"$id,omitempty"`
	Schema string             `json:"$schema,omitempty"`
	Ref    string             `json:"$ref,omitempty"`
	Defs   map[string]*Schema `json:"$defs,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	Properties           *SchemaMap `json:"properties,omitempty"`
	AdditionalProperties *Schema    `json:"additionalProperties,omitempty"`
	Items                *Schema    `json:"items,omitempty"`

	Type     SchemaType `json:"type,omitempty"`
	Required []string   `json:"required,omitempty"`

	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`

	// Boolean JSON Schemas (true / false) parse into this field alone.
	Boolean *bool `json:"-"`
}

// newSchema parses JSON schema data and returns a Schema object.
func newSchema(jsonSchema []byte) (*Schema, error) {
	schema := &Schema{}
	if err := json.Unmarshal(jsonSchema, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// UnmarshalJSON handles boolean schemas, Draft-7 "definitions", and the
// items polymorphism (tuple form is ignored, list form is kept).
func (s *Schema) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		s.Boolean = &b
		return nil
	}

	type Alias Schema
	aux := &struct {
		Items       json.RawMessage    `json:"items,omitempty"`
		Definitions map[string]*Schema `json:"definitions,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Items) > 0 {
		trimmed := bytes.TrimSpace(aux.Items)
		// Tuple validation (Draft-7 array form) carries no single item
		// schema; only the list form feeds array planning.
		if len(trimmed) > 0 && trimmed[0] != '[' {
			if err := json.Unmarshal(aux.Items, &s.Items); err != nil {
				return err
			}
		}
	}

	if s.Defs == nil && aux.Definitions != nil {
		s.Defs = aux.Definitions
	}

	return nil
}

// HasType reports whether the schema declares the given type, either as its
// single type or as one member of a type array.
func (s *Schema) HasType(t string) bool {
	for _, st := range s.Type {
		if st == t {
			return true
		}
	}
	return false
}

// IsScalar reports whether every declared type is scalar. Schemas with no
// declared type are not scalar.
func (s *Schema) IsScalar() bool {
	if len(s.Type) == 0 {
		return false
	}
	for _, st := range s.Type {
		if !isScalarType(st) && st != "integer" {
			return false
		}
	}
	return true
}

// requiredSet returns the required property names as a set.
func (s *Schema) requiredSet() map[string]struct{} {
	if len(s.Required) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(s.Required))
	for _, name := range s.Required {
		set[name] = struct{}{}
	}
	return set
}

// propertySchema returns the declared schema of a named property, if any.
func (s *Schema) propertySchema(name string) *Schema {
	if s.Properties == nil {
		return nil
	}
	return (*s.Properties)[name]
}

// SchemaMap represents a map of property names to their schemas.
type SchemaMap map[string]*Schema

// UnmarshalJSON parses a JSON object into a SchemaMap.
func (sm *SchemaMap) UnmarshalJSON(data []byte) error {
	m := make(map[string]*Schema)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*sm = SchemaMap(m)
	return nil
}

// SchemaType holds one or more declared types for a schema node.
type SchemaType []string

// UnmarshalJSON accepts both the single string and the array form.
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var singleType string
	if err := json.Unmarshal(data, &singleType); err == nil {
		*st = SchemaType{singleType}
		return nil
	}

	var multiType []string
	if err := json.Unmarshal(data, &multiType); err == nil {
		*st = SchemaType(multiType)
		return nil
	}

	return ErrInvalidSchemaType
}
