package schemadiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedDocs(t *testing.T, oldText, newText string) (*ParsedDocument, *ParsedDocument) {
	t.Helper()
	parser := NewJSONParser()
	oldDoc, err := parser.Parse([]byte(oldText))
	require.NoError(t, err)
	newDoc, err := parser.Parse([]byte(newText))
	require.NoError(t, err)
	return oldDoc, newDoc
}

func TestAggregatorLinesAndExplanations(t *testing.T) {
	oldDoc, newDoc := parsedDocs(t,
		"{\n  \"a\": 1,\n  \"b\": 2\n}",
		"{\n  \"a\": 9,\n  \"c\": 3\n}",
	)

	ops := []Operation{
		{Op: OpReplace, Path: "/a", Value: 9.0, OldValue: 1.0},
		{Op: OpRemove, Path: "/b", OldValue: 2.0},
		{Op: OpAdd, Path: "/c", Value: 3.0},
	}

	patch := NewAggregator(Plan{}, nil).Aggregate(ops, oldDoc, newDoc, nil)
	require.Len(t, patch.Operations, 3)

	replace := patch.Operations[0]
	assert.Equal(t, "Replaced value at path '/a'.", replace.Explanation)
	assert.Equal(t, 2, replace.Line)
	assert.Equal(t, 2, replace.OldLine)

	remove := patch.Operations[1]
	assert.Equal(t, "Removed value from path '/b'.", remove.Explanation)
	assert.Equal(t, 0, remove.Line) // removals have no new-document line
	assert.Equal(t, 3, remove.OldLine)

	add := patch.Operations[2]
	assert.Equal(t, "Added value at path '/c'.", add.Explanation)
	assert.Equal(t, 3, add.Line)
	assert.Equal(t, 0, add.OldLine)
}

func TestAggregatorAppendPathDegrades(t *testing.T) {
	oldDoc, newDoc := parsedDocs(t, `{"arr": [1]}`, `{"arr": [1, 2]}`)

	ops := []Operation{{Op: OpAdd, Path: "/arr/-", Value: 2.0}}
	patch := NewAggregator(Plan{}, nil).Aggregate(ops, oldDoc, newDoc, nil)

	require.Len(t, patch.Operations, 1)
	assert.Equal(t, 0, patch.Operations[0].Line)
}

func TestAggregatorNoopExplainer(t *testing.T) {
	oldDoc, newDoc := parsedDocs(t, `{"a": 1}`, `{"a": 2}`)

	ops := []Operation{{Op: OpReplace, Path: "/a", Value: 2.0, OldValue: 1.0}}
	patch := NewAggregator(Plan{}, NewNoopExplainer()).Aggregate(ops, oldDoc, newDoc, nil)

	require.Len(t, patch.Operations, 1)
	assert.Equal(t, "", patch.Operations[0].Explanation)
}

func TestAggregatorLocalizedExplainer(t *testing.T) {
	oldDoc, newDoc := parsedDocs(t, `{"a": 1}`, `{"a": 2}`)

	ops := []Operation{{Op: OpReplace, Path: "/a", Value: 2.0, OldValue: 1.0}}
	patch := NewAggregator(Plan{}, NewLocalizedExplainer("zh-Hans")).Aggregate(ops, oldDoc, newDoc, nil)

	require.Len(t, patch.Operations, 1)
	assert.Contains(t, patch.Operations[0].Explanation, "/a")
	assert.NotEqual(t, "Replaced value at path '/a'.", patch.Operations[0].Explanation)
}

func TestAggregatorPartialRelativeLines(t *testing.T) {
	oldDoc, newDoc := parsedDocs(t, locatedJSON, `{
  "name": "beta",
  "envs": [
    {
      "services": [
        {"id": "a", "cpu": 2}
      ]
    }
  ]
}`)

	ops := []Operation{{Op: OpReplace, Path: "/envs/0/services/0/cpu", Value: 2.0, OldValue: 1.0}}
	partialKeys := []string{"/envs/0/services"}

	patch := NewAggregator(Plan{}, nil).Aggregate(ops, oldDoc, newDoc, partialKeys)
	require.Len(t, patch.Operations, 1)

	// The services array opens on line 5, the changed item sits on line 6:
	// relative line 2 inside the sub-document.
	assert.Equal(t, 2, patch.Operations[0].Line)
	assert.Equal(t, 2, patch.Operations[0].OldLine)
}

func TestLongestPrefixKey(t *testing.T) {
	keys := []string{"/envs", "/envs/0/services", ""}

	assert.Equal(t, "/envs/0/services", longestPrefixKey("/envs/0/services/0/cpu", keys))
	assert.Equal(t, "/envs", longestPrefixKey("/envs/1", keys))
	assert.Equal(t, "", longestPrefixKey("/other", keys))
	// A key is not a prefix of a sibling with a shared string prefix.
	assert.Equal(t, "", longestPrefixKey("/envsX", []string{"/envs"}))
	assert.Equal(t, "/envs", longestPrefixKey("/envs", []string{"/envs"}))
}
