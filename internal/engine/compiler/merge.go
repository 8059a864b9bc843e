// internal/engine/compiler/merge.go
package compiler

import (
	"pipeline-compiler/internal/engine/option"
)

// DeepMerge combines two fragment trees, right-biased at every level:
// where both sides hold a non-array mapping the children are merged
// key-by-key, otherwise the overlay value replaces the base value
// unconditionally (arrays and scalars included). Sibling keys from the
// base always survive.
//
// Neither input is mutated, and the result shares no structure with
// either input.
func DeepMerge(base, overlay option.Fragment) option.Fragment {
	out := make(option.Fragment, len(base)+len(overlay))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, ov := range overlay {
		if bm, ok := out[k].(map[string]interface{}); ok {
			if om, ok := ov.(map[string]interface{}); ok {
				out[k] = DeepMerge(bm, om)
				continue
			}
		}
		out[k] = cloneValue(ov)
	}
	return out
}

// cloneFragment deep-copies a fragment so compiled output never aliases
// catalog-owned maps; fragments are constructed fresh on every call.
func cloneFragment(f option.Fragment) option.Fragment {
	out := make(option.Fragment, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}

// MergeAll folds fragments left-to-right into a running result, seeded
// with base (which may be nil). Later fragments win direct conflicts.
func MergeAll(base option.Fragment, fragments []option.Fragment) option.Fragment {
	merged := DeepMerge(option.Fragment{}, base)
	for _, frag := range fragments {
		merged = DeepMerge(merged, frag)
	}
	return merged
}
