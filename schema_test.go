package schemadiff

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaUnmarshalBoolean(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`true`), &s))
	require.NotNil(t, s.Boolean)
	assert.True(t, *s.Boolean)
}

func TestSchemaUnmarshalDefinitionsCompat(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`{
		"definitions": {"service": {"type": "object"}}
	}`), &s))

	require.Contains(t, s.Defs, "service")
	assert.True(t, s.Defs["service"].HasType("object"))
}

func TestSchemaUnmarshalTupleItemsIgnored(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "array",
		"items": [{"type": "string"}, {"type": "number"}]
	}`), &s))

	assert.Nil(t, s.Items)
}

func TestSchemaTypeForms(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type": "string"}`), &s))
	assert.True(t, s.HasType("string"))
	assert.True(t, s.IsScalar())

	var multi Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type": ["string", "integer"]}`), &multi))
	assert.True(t, multi.IsScalar())

	var mixed Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type": ["string", "object"]}`), &mixed))
	assert.False(t, mixed.IsScalar())

	var none Schema
	require.NoError(t, json.Unmarshal([]byte(`{}`), &none))
	assert.False(t, none.IsScalar())
}

func TestResolveSchemaPointer(t *testing.T) {
	schema, err := newSchema([]byte(`{
		"$defs": {
			"service": {
				"type": "object",
				"properties": {
					"ports": {"type": "array", "items": {"type": "number"}}
				}
			}
		},
		"anyOf": [
			{"type": "object"},
			{"type": "array"}
		]
	}`))
	require.NoError(t, err)

	resolved := resolveSchemaPointer(schema, "/$defs/service")
	require.NotNil(t, resolved)
	assert.True(t, resolved.HasType("object"))

	resolved = resolveSchemaPointer(schema, "/$defs/service/properties/ports/items")
	require.NotNil(t, resolved)
	assert.True(t, resolved.HasType("number"))

	resolved = resolveSchemaPointer(schema, "/anyOf/1")
	require.NotNil(t, resolved)
	assert.True(t, resolved.HasType("array"))

	assert.Nil(t, resolveSchemaPointer(schema, "/$defs/missing"))
	assert.Nil(t, resolveSchemaPointer(schema, "/anyOf/7"))
	assert.Nil(t, resolveSchemaPointer(schema, "/nonsense"))
}
