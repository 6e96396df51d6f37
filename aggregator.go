package schemadiff

import "strings"

// Aggregator annotates raw deltas with source-line coordinates and
// explanations, producing the user-visible FinalPatch.
type Aggregator struct {
	plan      Plan
	explainer Explainer
}

// NewAggregator creates an aggregator using the given explainer; nil
// selects the default explainer.
func NewAggregator(plan Plan, explainer Explainer) *Aggregator {
	if explainer == nil {
		explainer = NewDefaultExplainer()
	}
	return &Aggregator{plan: plan, explainer: explainer}
}

// Aggregate wraps each delta. Lines come from the new document for
// add/replace and from the old document for remove/replace; when
// partialKeys are set, coordinates are rebased to be 1-based within the
// located sub-document. Paths with no location degrade silently to zero.
func (ag *Aggregator) Aggregate(ops []Operation, oldDoc, newDoc *ParsedDocument, partialKeys []string) *FinalPatch {
	patch := &FinalPatch{Operations: make([]FormattedOperation, 0, len(ops))}
	for _, op := range ops {
		formatted := FormattedOperation{
			Operation:   op,
			Explanation: ag.explainer.Explain(op, ag.plan),
		}
		if op.Op != OpAdd {
			formatted.OldLine = ag.lineFor(oldDoc, op.Path, partialKeys)
		}
		if op.Op != OpRemove {
			formatted.Line = ag.lineFor(newDoc, op.Path, partialKeys)
		}
		patch.Operations = append(patch.Operations, formatted)
	}
	return patch
}

func (ag *Aggregator) lineFor(doc *ParsedDocument, path string, partialKeys []string) int {
	loc := doc.Locate(path)
	if loc.Line == 0 {
		return 0
	}
	if base := longestPrefixKey(path, partialKeys); base != "" {
		baseLoc := doc.Locate(base)
		if baseLoc.Line > 0 {
			return loc.Line - baseLoc.Line + 1
		}
	}
	return loc.Line
}

// longestPrefixKey picks the longest partial key that is a path prefix of
// the delta path.
func longestPrefixKey(path string, partialKeys []string) string {
	var best string
	for _, key := range partialKeys {
		if key == "" {
			continue
		}
		if path != key && !strings.HasPrefix(path, key+"/") {
			continue
		}
		if len(key) > len(best) {
			best = key
		}
	}
	return best
}
