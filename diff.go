package schemadiff

// DiffEngine walks two decoded documents in lockstep under a Plan and
// emits raw deltas. A single Diff call runs to completion synchronously;
// the engine is not safe for concurrent use because of the equality memo.
type DiffEngine struct {
	plan Plan
	eq   *equalityCache
}

// NewDiffEngine creates an engine for the given plan with the equality
// memo enabled.
func NewDiffEngine(plan Plan) *DiffEngine {
	return &DiffEngine{plan: plan, eq: newEqualityCache()}
}

// WithEqualityCache enables or disables the equality memo. Disabling never
// changes the emitted deltas, only the work done to compute them.
func (e *DiffEngine) WithEqualityCache(enabled bool) *DiffEngine {
	if enabled && e.eq == nil {
		e.eq = newEqualityCache()
	}
	if !enabled {
		e.eq = nil
	}
	return e
}

// ClearCache drops all memoized equality results.
func (e *DiffEngine) ClearCache() {
	if e.eq != nil {
		e.eq.clear()
	}
}

// Diff computes the delta sequence that transforms oldDoc into newDoc.
// When partialKeys is non-empty the diff is restricted to the sub-documents
// at those JSON Pointers.
func (e *DiffEngine) Diff(oldDoc, newDoc any, partialKeys ...string) []Operation {
	// The memo is keyed on object addresses, which are only meaningful while
	// the trees of this call are alive.
	e.ClearCache()
	var out []Operation
	if len(partialKeys) == 0 {
		e.diffValues(oldDoc, newDoc, "", &out)
		return out
	}

	for _, key := range partialKeys {
		oldSub, oldOK := getByPointer(oldDoc, key)
		newSub, newOK := getByPointer(newDoc, key)
		switch {
		case !oldOK && !newOK:
		case !oldOK:
			out = append(out, Operation{Op: OpAdd, Path: key, Value: newSub})
		case !newOK:
			out = append(out, Operation{Op: OpRemove, Path: key, OldValue: oldSub})
		default:
			e.diffValues(oldSub, newSub, key, &out)
		}
	}
	return out
}

// diffValues dispatches one pair of values. Both sides are known to exist;
// presence differences are handled by the callers that discover them.
func (e *DiffEngine) diffValues(a, b any, path string, out *[]Operation) {
	if sameReference(a, b) {
		return
	}

	ta, tb := jsonTypeOf(a), jsonTypeOf(b)
	if ta != tb {
		*out = append(*out, Operation{Op: OpReplace, Path: path, Value: b, OldValue: a})
		return
	}

	switch ta {
	case "array":
		e.diffArrays(a.([]any), b.([]any), path, out)
	case "object":
		e.diffObjects(a.(map[string]any), b.(map[string]any), path, out)
	default:
		if !scalarEqual(a, b) {
			*out = append(*out, Operation{Op: OpReplace, Path: path, Value: b, OldValue: a})
		}
	}
}

// diffObjects recurses over the key union in deterministic order.
func (e *DiffEngine) diffObjects(a, b map[string]any, path string, out *[]Operation) {
	for _, key := range unionKeys(a, b) {
		childPath := joinPath(path, key)
		av, aok := a[key]
		bv, bok := b[key]
		switch {
		case aok && bok:
			e.diffValues(av, bv, childPath, out)
		case aok:
			*out = append(*out, Operation{Op: OpRemove, Path: childPath, OldValue: av})
		default:
			*out = append(*out, Operation{Op: OpAdd, Path: childPath, Value: bv})
		}
	}
}

// diffArrays routes one array pair to its strategy.
func (e *DiffEngine) diffArrays(a, b []any, path string, out *[]Operation) {
	ap := e.plan.Lookup(path)
	switch {
	case ap != nil && ap.Strategy == StrategyPrimaryKey && ap.PrimaryKey != "":
		e.diffByPrimaryKey(a, b, path, ap, out)
	case ap != nil && ap.Strategy == StrategyUnique && allScalars(a) && allScalars(b):
		// Non-scalar elements are out of the unique contract; such arrays
		// fall through to LCS.
		e.diffUnique(a, b, path, out)
	default:
		e.diffLCS(a, b, path, ap, out)
	}
}

func allScalars(arr []any) bool {
	for _, v := range arr {
		switch jsonTypeOf(v) {
		case "array", "object":
			return false
		}
	}
	return true
}
