package schemadiff

import "sort"

// indexEntry pins an old-array element to its original position.
type indexEntry struct {
	index int
	item  any
}

// diffByPrimaryKey reconciles two arrays of keyed records in O(n+m).
// Output ordering per array: modifications in sweep order, then removals
// by descending original index, then additions appended via /-. Sequential
// application of that ordering never suffers index drift.
//
// Elements without a valid scalar primary key are out of contract: they
// match nothing and emit nothing. When the same key appears twice, the
// first occurrence wins the index and later ones are treated as additions.
func (e *DiffEngine) diffByPrimaryKey(a, b []any, path string, ap *ArrayPlan, out *[]Operation) {
	index := make(map[any]indexEntry, len(a))
	for i, item := range a {
		key, ok := primaryKeyOf(item, ap.PrimaryKey)
		if !ok {
			continue
		}
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = indexEntry{index: i, item: item}
	}

	var additions []Operation
	for _, item := range b {
		key, ok := primaryKeyOf(item, ap.PrimaryKey)
		if !ok {
			continue
		}
		entry, matched := index[key]
		if !matched {
			additions = append(additions, Operation{Op: OpAdd, Path: appendPath(path), Value: item})
			continue
		}
		delete(index, key)

		if e.keyedItemChanged(entry.item, item, ap) {
			e.diffValues(entry.item, item, joinIndex(path, entry.index), out)
		}
	}

	removals := make([]indexEntry, 0, len(index))
	for _, entry := range index {
		removals = append(removals, entry)
	}
	sort.Slice(removals, func(i, j int) bool { return removals[i].index > removals[j].index })
	for _, entry := range removals {
		*out = append(*out, Operation{Op: OpRemove, Path: joinIndex(path, entry.index), OldValue: entry.item})
	}

	*out = append(*out, additions...)
}

// keyedItemChanged decides whether a matched pair needs recursion. With
// hash fields configured, any field mismatch answers immediately; when all
// hash fields agree, deep equality confirms there is no deeper change.
func (e *DiffEngine) keyedItemChanged(oldItem, newItem any, ap *ArrayPlan) bool {
	if len(ap.HashFields) > 0 {
		oldObj, oldOK := oldItem.(map[string]any)
		newObj, newOK := newItem.(map[string]any)
		if oldOK && newOK {
			for _, field := range ap.HashFields {
				if !deepEqual(oldObj[field], newObj[field]) {
					return true
				}
			}
		}
	}
	return !deepEqual(oldItem, newItem)
}

// primaryKeyOf extracts a scalar string/number key from an object element.
func primaryKeyOf(item any, field string) (any, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[field]
	if !ok {
		return nil, false
	}
	switch jsonTypeOf(v) {
	case "string":
		return v, true
	case "number":
		f, ok := toFloat(v)
		return f, ok
	default:
		return nil, false
	}
}
