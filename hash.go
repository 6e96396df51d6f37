package schemadiff

import (
	"strconv"

	"github.com/goccy/go-json"
)

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// fastHash computes the FNV-1a 32-bit hash of s, rendered as lower-case hex.
// It keys the result cache and derives hash identities for array elements.
func fastHash(s string) string {
	hash := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= fnvPrime32
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// canonicalString renders a value as deterministic JSON. Map keys are
// sorted by the encoder, so structurally equal values stringify equally.
func canonicalString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// resultCacheKey joins the hashes of both raw inputs. Collisions are
// possible in principle (32-bit hash); upgrading the hash width would not
// change semantics.
func resultCacheKey(doc1Text, doc2Text []byte) string {
	return fastHash(string(doc1Text)) + ":" + fastHash(string(doc2Text))
}
