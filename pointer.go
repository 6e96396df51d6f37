package schemadiff

import (
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonpointer"
)

// appendSentinel is the RFC 6901 child token denoting append-to-array.
const appendSentinel = "-"

// escapeToken applies the RFC 6901 escape rules (~ -> ~0, / -> ~1).
func escapeToken(token string) string {
	return jsonpointer.Format(token)[1:]
}

// joinPath appends one unescaped token to a JSON Pointer.
func joinPath(path, token string) string {
	return path + "/" + escapeToken(token)
}

// joinIndex appends an array index to a JSON Pointer.
func joinIndex(path string, index int) string {
	return path + "/" + strconv.Itoa(index)
}

// appendPath returns the append form of an array path (path/-).
func appendPath(path string) string {
	return path + "/" + appendSentinel
}

// splitPath decodes a JSON Pointer into its unescaped tokens. The empty
// pointer names the document root and has no tokens.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return jsonpointer.Parse(path)
}

// parentPath drops the last token of a pointer. The root has no parent and
// maps to itself.
func parentPath(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

// normalizePath removes every all-digit segment from a document path, so a
// concrete path like /envs/0/services collapses onto the schema-shaped key
// /envs/services.
func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	var b strings.Builder
	for _, token := range splitPath(path) {
		if isDigits(token) {
			continue
		}
		b.WriteString("/")
		b.WriteString(escapeToken(token))
	}
	return b.String()
}

// canonicalPlanKey removes wildcard segments from a plan or override key,
// putting per-element descent patterns like /envs/*/services and normalized
// document paths like /envs/services into the same form.
func canonicalPlanKey(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	for _, token := range splitPath(key) {
		if token == "*" {
			continue
		}
		b.WriteString("/")
		b.WriteString(escapeToken(token))
	}
	return b.String()
}

// getByPointer walks a decoded document along a JSON Pointer. It returns
// false when any segment is missing or of the wrong shape.
func getByPointer(doc any, path string) (any, bool) {
	current := doc
	for _, token := range splitPath(path) {
		switch node := current.(type) {
		case map[string]any:
			child, ok := node[token]
			if !ok {
				return nil, false
			}
			current = child
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
