// Package schemadiff computes structural diffs between two JSON (or YAML)
// documents and emits a canonical sequence of JSON Pointer addressed edit
// operations (add / remove / replace).
//
// Array matching is schema-driven: a Planner compiles a JSON Schema into a
// per-array plan that selects one of three strategies (primary-key
// reconciliation, unique scalar sets, or Myers LCS), and the diff engine
// walks both documents in lockstep under that plan.
package schemadiff
