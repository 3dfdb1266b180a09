package config

// Merge deep-merges overlay onto a copy of base and returns the result.
// Neither input is modified.
//
// Mappings merge key by key. Sequences and scalars in overlay replace the
// corresponding value in base, including zero values such as false or "".
// A key absent from base behaves as an empty mapping.
func Merge(base, overlay Tree) Tree {
	out := cloneTree(base)
	MergeInto(out, overlay)
	return out
}

// MergeInto deep-merges overlay into base in place. base must be non-nil.
// Values taken from overlay are copied, so later edits to overlay never leak
// into base.
func MergeInto(base, overlay Tree) {
	for key, ov := range overlay {
		if om, ok := ov.(map[string]any); ok {
			if bm, ok := base[key].(map[string]any); ok {
				MergeInto(bm, om)
				continue
			}
		}
		base[key] = cloneValue(ov)
	}
}

// PopulateDefaults merges layer underneath tree in place: every value
// already present in tree wins and only missing keys are filled from layer.
// A key holding nil counts as missing. Re-applying the same layer is a no-op.
func PopulateDefaults(tree, layer Tree) {
	for key, dv := range layer {
		tv, exists := tree[key]
		if !exists || tv == nil {
			tree[key] = cloneValue(dv)
			continue
		}
		tm, tok := tv.(map[string]any)
		dm, dok := dv.(map[string]any)
		if tok && dok {
			PopulateDefaults(tm, dm)
		}
	}
}
