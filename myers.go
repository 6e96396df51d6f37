package schemadiff

// editKind is one step of a raw Myers edit script.
type editKind int8

const (
	editCommon editKind = iota
	editAdd
	editRemove
	editReplace
)

// editStep pairs a script op with the source indices it touches. ai is
// valid for common/remove/replace, bi for common/add/replace.
type editStep struct {
	kind editKind
	ai   int
	bi   int
}

// diffLCS diffs one array pair with Myers' O((n+m)*D) shortest edit
// script. Element equality is the plan identity when one is derived, and
// memoized deep equality otherwise; naked objects are never deep-compared
// inside the snake loop without the memo in front.
func (e *DiffEngine) diffLCS(a, b []any, path string, ap *ArrayPlan, out *[]Operation) {
	// Degenerate scripts need no search.
	if len(a) == 0 {
		for i, item := range b {
			*out = append(*out, Operation{Op: OpAdd, Path: joinIndex(path, i), Value: item})
		}
		return
	}
	if len(b) == 0 {
		for i := 0; i < len(a); i++ {
			*out = append(*out, Operation{Op: OpRemove, Path: joinIndex(path, 0), OldValue: a[i]})
		}
		return
	}

	script := e.shortestEditScript(a, b, ap)
	script = collapseReplacements(script)

	// outIdx tracks positions in the growing result: it advances on
	// common, replace, and add, but not on remove, so later paths refer to
	// post-edit positions.
	outIdx := 0
	for _, step := range script {
		switch step.kind {
		case editCommon:
			_, aObj := a[step.ai].(map[string]any)
			_, bObj := b[step.bi].(map[string]any)
			if aObj && bObj {
				// Equal under identity may still differ in non-hashed
				// fields; surface nested changes.
				e.diffValues(a[step.ai], b[step.bi], joinIndex(path, outIdx), out)
			}
			outIdx++
		case editReplace:
			_, aObj := a[step.ai].(map[string]any)
			_, bObj := b[step.bi].(map[string]any)
			if aObj && bObj {
				// A collapsed object pair at the same output slot is a
				// modification, not a swap; recurse for field-level deltas.
				e.diffValues(a[step.ai], b[step.bi], joinIndex(path, outIdx), out)
			} else {
				*out = append(*out, Operation{Op: OpReplace, Path: joinIndex(path, outIdx), Value: b[step.bi], OldValue: a[step.ai]})
			}
			outIdx++
		case editRemove:
			*out = append(*out, Operation{Op: OpRemove, Path: joinIndex(path, outIdx), OldValue: a[step.ai]})
		case editAdd:
			*out = append(*out, Operation{Op: OpAdd, Path: joinIndex(path, outIdx), Value: b[step.bi]})
			outIdx++
		}
	}
}

// elemEqual is the snake-loop comparison.
func (e *DiffEngine) elemEqual(a, b any, ap *ArrayPlan) bool {
	if ap != nil && ap.identity != nil {
		return deepEqual(ap.identity(a), ap.identity(b))
	}
	var hashFields []string
	if ap != nil {
		hashFields = ap.HashFields
	}
	return deepEqualMemo(a, b, hashFields, e.eq)
}

// shortestEditScript runs the forward Myers search, retaining one row
// vector per d, then backtracks through the trace to produce the script in
// source order.
func (e *DiffEngine) shortestEditScript(a, b []any, ap *ArrayPlan) []editStep {
	n, m := len(a), len(b)
	max := n + m
	offset := max

	v := make([]int, 2*max+1)
	trace := make([][]int, 0, 8)

	endD := -1
search:
	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && e.elemEqual(a[x], b[y], ap) {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				endD = d
				break search
			}
		}
	}

	// Backtrack from (n, m) using the vector state recorded before each
	// round.
	var reversed []editStep
	x, y := n, m
	for d := endD; d > 0; d-- {
		prev := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			reversed = append(reversed, editStep{kind: editCommon, ai: x - 1, bi: y - 1})
			x--
			y--
		}
		if x == prevX {
			reversed = append(reversed, editStep{kind: editAdd, ai: -1, bi: y - 1})
			y = prevY
		} else {
			reversed = append(reversed, editStep{kind: editRemove, ai: x - 1, bi: -1})
			x = prevX
		}
	}
	for x > 0 && y > 0 {
		reversed = append(reversed, editStep{kind: editCommon, ai: x - 1, bi: y - 1})
		x--
		y--
	}

	script := make([]editStep, len(reversed))
	for i, step := range reversed {
		script[len(reversed)-1-i] = step
	}
	return script
}

// collapseReplacements folds every adjacent remove/add pair into a single
// replace.
func collapseReplacements(script []editStep) []editStep {
	collapsed := make([]editStep, 0, len(script))
	for i := 0; i < len(script); i++ {
		if i+1 < len(script) && script[i].kind == editRemove && script[i+1].kind == editAdd {
			collapsed = append(collapsed, editStep{kind: editReplace, ai: script[i].ai, bi: script[i+1].bi})
			i++
			continue
		}
		collapsed = append(collapsed, script[i])
	}
	return collapsed
}
