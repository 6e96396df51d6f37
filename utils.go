package schemadiff

import (
	"math"
	"reflect"
	"sort"

	"github.com/goccy/go-json"
)

// jsonTypeOf identifies the JSON type of a decoded Go value.
func jsonTypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

func isScalarType(t string) bool {
	return t == "string" || t == "number" || t == "boolean"
}

// toFloat converts any decoded JSON number representation to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// scalarEqual compares two values already known to share a scalar JSON
// type. Numbers compare by bit pattern, so NaN equals NaN.
func scalarEqual(a, b any) bool {
	switch jsonTypeOf(a) {
	case "null":
		return true
	case "number":
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return math.Float64bits(fa) == math.Float64bits(fb)
	default:
		return a == b
	}
}

// scalarKey normalizes a scalar for use as a set-membership key.
func scalarKey(v any) any {
	if f, ok := toFloat(v); ok && jsonTypeOf(v) == "number" {
		return f
	}
	return v
}

// sameReference reports whether a and b are the identical map or slice
// value. Scalars never count as referentially identical here; the cheap
// scalar comparison happens later in the dispatch.
func sameReference(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok && bok {
		return am != nil && reflect.ValueOf(am).Pointer() == reflect.ValueOf(bm).Pointer()
	}
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok && bok {
		return as != nil && len(as) == len(bs) &&
			(len(as) == 0 || reflect.ValueOf(as).Pointer() == reflect.ValueOf(bs).Pointer())
	}
	return false
}

// unionKeys returns the key union of two objects in a deterministic order:
// keys of the old object sorted, followed by new-only keys sorted.
func unionKeys(oldObj, newObj map[string]any) []string {
	oldKeys := make([]string, 0, len(oldObj))
	for k := range oldObj {
		oldKeys = append(oldKeys, k)
	}
	sort.Strings(oldKeys)

	newOnly := make([]string, 0)
	for k := range newObj {
		if _, ok := oldObj[k]; !ok {
			newOnly = append(newOnly, k)
		}
	}
	sort.Strings(newOnly)

	return append(oldKeys, newOnly...)
}
