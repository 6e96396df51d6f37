package schemadiff

import (
	"reflect"
)

// deepEqual is strict structural equality over decoded JSON values: same
// JSON type, arrays of equal length with pairwise equal elements, objects
// with identical key sets and pairwise equal values. Numbers compare by bit
// pattern (NaN equals NaN). null equals null only.
func deepEqual(a, b any) bool {
	ta, tb := jsonTypeOf(a), jsonTypeOf(b)
	if ta != tb {
		return false
	}
	switch ta {
	case "array":
		as, bs := a.([]any), b.([]any)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !deepEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	case "object":
		am, bm := a.(map[string]any), b.(map[string]any)
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(a, b)
	}
}

// equalityCache memoizes object-to-object comparisons. Keys are the map
// header pointers of the compared objects, so the cache is only meaningful
// while the compared trees stay alive; it is scoped to a single diff call
// by the engine and to the façade lifetime otherwise.
type equalityCache struct {
	pairs map[uintptr]map[uintptr]bool
}

func newEqualityCache() *equalityCache {
	return &equalityCache{pairs: make(map[uintptr]map[uintptr]bool)}
}

func (c *equalityCache) get(a, b uintptr) (bool, bool) {
	inner, ok := c.pairs[a]
	if !ok {
		return false, false
	}
	v, ok := inner[b]
	return v, ok
}

func (c *equalityCache) put(a, b uintptr, v bool) {
	inner, ok := c.pairs[a]
	if !ok {
		inner = make(map[uintptr]bool)
		c.pairs[a] = inner
	}
	inner[b] = v
}

func (c *equalityCache) clear() {
	c.pairs = make(map[uintptr]map[uintptr]bool)
}

// deepEqualMemo is deepEqual behind two cheap layers: when both operands
// are objects and hashFields is non-empty, the named fields are compared
// first and any mismatch short-circuits to false; results for
// object-object pairs are memoized by object identity. Primitive and array
// comparisons are never cached. A nil cache degrades to plain deepEqual.
func deepEqualMemo(a, b any, hashFields []string, cache *equalityCache) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if !aok || !bok {
		return deepEqual(a, b)
	}

	var ka, kb uintptr
	if cache != nil {
		ka = reflect.ValueOf(am).Pointer()
		kb = reflect.ValueOf(bm).Pointer()
		if v, ok := cache.get(ka, kb); ok {
			return v
		}
	}

	result := true
	if len(hashFields) > 0 {
		for _, field := range hashFields {
			if !deepEqual(am[field], bm[field]) {
				result = false
				break
			}
		}
	}
	if result {
		result = deepEqual(a, b)
	}

	if cache != nil {
		cache.put(ka, kb, result)
	}
	return result
}
