package schemadiff

import (
	"strconv"
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var genKey = rapid.SampledFrom([]string{"alpha", "beta", "gamma", "delta"})

func drawScalar(t *rapid.T, label string) any {
	switch rapid.IntRange(0, 2).Draw(t, label+"-kind") {
	case 0:
		return rapid.SampledFrom([]string{"a", "b", "c", "x", "y"}).Draw(t, label+"-str")
	case 1:
		return float64(rapid.IntRange(0, 9).Draw(t, label+"-num"))
	default:
		return rapid.Bool().Draw(t, label+"-bool")
	}
}

// drawValue generates an arbitrary JSON value with bounded depth.
func drawValue(t *rapid.T, depth int, label string) any {
	kinds := 1
	if depth > 0 {
		kinds = 3
	}
	switch rapid.IntRange(0, kinds-1).Draw(t, label+"-shape") {
	case 1:
		n := rapid.IntRange(0, 3).Draw(t, label+"-len")
		arr := make([]any, n)
		for i := range arr {
			arr[i] = drawValue(t, depth-1, label+"-elem")
		}
		return arr
	case 2:
		n := rapid.IntRange(0, 3).Draw(t, label+"-size")
		obj := make(map[string]any)
		for i := 0; i < n; i++ {
			obj[genKey.Draw(t, label+"-key")] = drawValue(t, depth-1, label+"-val")
		}
		return obj
	default:
		return drawScalar(t, label)
	}
}

func drawDocument(t *rapid.T, label string) map[string]any {
	obj := make(map[string]any)
	n := rapid.IntRange(0, 3).Draw(t, label+"-size")
	for i := 0; i < n; i++ {
		obj[genKey.Draw(t, label+"-key")] = drawValue(t, 2, label)
	}
	return obj
}

// Identity: diffing a document against itself is always empty.
func TestPropertyDiffIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := drawDocument(t, "doc")
		engine := NewDiffEngine(Plan{})
		require.Empty(t, engine.Diff(doc, doc))

		// A structurally equal clone diffs empty too.
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		var clone any
		require.NoError(t, json.Unmarshal(data, &clone))
		require.Empty(t, engine.Diff(doc, clone))
	})
}

// Apply soundness: sequentially applying the produced patch to the old
// document yields the new document.
func TestPropertyApplySoundness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldDoc := drawDocument(t, "old")
		newDoc := drawDocument(t, "new")

		engine := NewDiffEngine(Plan{})
		ops := engine.Diff(oldDoc, newDoc)
		if len(ops) == 0 {
			require.True(t, deepEqual(oldDoc, newDoc))
			return
		}

		patchJSON, err := json.Marshal(ops)
		require.NoError(t, err)
		patch, err := jsonpatch.DecodePatch(patchJSON)
		require.NoError(t, err)

		oldJSON, err := json.Marshal(oldDoc)
		require.NoError(t, err)
		patched, err := patch.Apply(oldJSON)
		require.NoError(t, err, "patch %s failed on %s", patchJSON, oldJSON)

		var result any
		require.NoError(t, json.Unmarshal(patched, &result))
		require.True(t, deepEqual(result, newDoc),
			"applying %s to %s produced %s", patchJSON, oldJSON, patched)
	})
}

// Determinism: the diff is a pure function of its inputs.
func TestPropertyDeterministicOutput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldDoc := drawDocument(t, "old")
		newDoc := drawDocument(t, "new")

		first := NewDiffEngine(Plan{}).Diff(oldDoc, newDoc)
		second := NewDiffEngine(Plan{}).Diff(oldDoc, newDoc)
		require.Equal(t, first, second)
	})
}

// Equality-cache invariance: the memo never changes the emitted deltas.
func TestPropertyEqualityCacheInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldDoc := drawDocument(t, "old")
		newDoc := drawDocument(t, "new")

		cached := NewDiffEngine(Plan{}).Diff(oldDoc, newDoc)
		uncached := NewDiffEngine(Plan{}).WithEqualityCache(false).Diff(oldDoc, newDoc)
		require.Equal(t, cached, uncached)
	})
}

// drawKeyedArray builds an array of records with distinct ids.
func drawKeyedArray(t *rapid.T, label string) []any {
	ids := rapid.SliceOfNDistinct(
		rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}),
		0, 5, func(s string) string { return s },
	).Draw(t, label+"-ids")

	arr := make([]any, len(ids))
	for i, id := range ids {
		arr[i] = map[string]any{
			"id": id,
			"v":  float64(rapid.IntRange(0, 3).Draw(t, label+"-v")),
		}
	}
	return arr
}

// Primary-key ordering: modifications first, then removals by strictly
// descending original index, then additions.
func TestPropertyPrimaryKeyOrdering(t *testing.T) {
	plan := Plan{"/arr": keyedPlan("id")}

	rapid.Check(t, func(t *rapid.T) {
		oldArr := drawKeyedArray(t, "old")
		newArr := drawKeyedArray(t, "new")

		engine := NewDiffEngine(plan)
		var ops []Operation
		engine.diffByPrimaryKey(oldArr, newArr, "/arr", plan["/arr"], &ops)

		// Phases: 0 = modifications, 1 = removals, 2 = additions.
		phase := 0
		lastRemoved := -1
		for _, op := range ops {
			switch {
			case op.Op == OpAdd && op.Path == "/arr/-":
				phase = 2
			case op.Op == OpRemove && len(splitPath(op.Path)) == 2:
				require.LessOrEqual(t, phase, 1, "removal after addition: %v", ops)
				idx, err := strconv.Atoi(splitPath(op.Path)[1])
				require.NoError(t, err)
				if phase == 1 {
					require.Less(t, idx, lastRemoved, "removals not descending: %v", ops)
				}
				lastRemoved = idx
				phase = 1
			default:
				require.Equal(t, 0, phase, "modification out of order: %v", ops)
				require.True(t, strings.HasPrefix(op.Path, "/arr/"), op.Path)
			}
		}
	})
}

// A permutation of keyed records with unchanged contents is a no-op.
func TestPropertyPrimaryKeyPermutationIsEmpty(t *testing.T) {
	plan := Plan{"/arr": keyedPlan("id")}

	rapid.Check(t, func(t *rapid.T) {
		oldArr := drawKeyedArray(t, "old")
		perm := rapid.Permutation(oldArr).Draw(t, "perm")

		engine := NewDiffEngine(plan)
		var ops []Operation
		engine.diffByPrimaryKey(oldArr, perm, "/arr", plan["/arr"], &ops)
		require.Empty(t, ops)
	})
}

// Ignored-path property: every partial delta sits under its key, and every
// full-diff delta under the key appears in the partial diff.
func TestPropertyPartialDiff(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldDoc := drawDocument(t, "old")
		newDoc := drawDocument(t, "new")

		engine := NewDiffEngine(Plan{})
		key := "/alpha"

		partial := engine.Diff(oldDoc, newDoc, key)
		for _, op := range partial {
			require.True(t, op.Path == key || strings.HasPrefix(op.Path, key+"/"),
				"delta escaped the partial key: %v", op)
		}

		full := engine.Diff(oldDoc, newDoc)
		for _, op := range full {
			if op.Path != key && !strings.HasPrefix(op.Path, key+"/") {
				continue
			}
			require.Contains(t, partial, op)
		}
	})
}
