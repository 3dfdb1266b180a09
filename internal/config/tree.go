package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/copystructure"
)

// Tree is a nested configuration mapping. Values are nested mappings,
// sequences ([]any), scalars (string, bool, int64, float64) or strings
// carrying a deferred expression marker.
type Tree = map[string]any

// Section names the engine knows about.
const (
	SectionProject      = "project"
	SectionPaths        = "paths"
	SectionTools        = "tools"
	SectionPlugins      = "plugins"
	SectionEnvironment  = "environment"
	SectionMock         = "cmock"
	SectionReleaseBuild = "release_build"
)

// cloneValue returns a deep copy of v.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	return copystructure.Must(copystructure.Copy(v))
}

// cloneTree returns a deep copy of t. A nil tree clones to an empty one.
func cloneTree(t Tree) Tree {
	if t == nil {
		return Tree{}
	}
	return cloneValue(t).(map[string]any)
}

// section returns the named sub-mapping of t, or nil when it is absent or
// not a mapping.
func section(t Tree, name string) Tree {
	m, _ := t[name].(map[string]any)
	return m
}

// ensureSection returns the named sub-mapping of t, creating it when absent.
// A non-mapping value under name is replaced.
func ensureSection(t Tree, name string) Tree {
	if m, ok := t[name].(map[string]any); ok {
		return m
	}
	m := Tree{}
	t[name] = m
	return m
}

// lookup walks a dotted path through t.
func lookup(t Tree, path string) (any, bool) {
	var cur any = t
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// truthy reports whether the value at path is boolean true.
func truthy(t Tree, path string) bool {
	v, ok := lookup(t, path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// asSequence returns v as []any, accepting the slice shapes decoders produce.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// stringsOf renders each element of a sequence as a string.
func stringsOf(seq []any) []string {
	out := make([]string, 0, len(seq))
	for _, v := range seq {
		out = append(out, scalarString(v))
	}
	return out
}

// scalarString renders a scalar the way it is substituted into strings.
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []any:
		return strings.Join(stringsOf(s), " ")
	default:
		return fmt.Sprint(s)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeValue converts decoder output into the Tree value model: every
// mapping becomes map[string]any, every sequence []any and every integer int64.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeValue(x[i])
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeValue(x[i])
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	default:
		return v
	}
}

// normalizeTree applies normalizeValue to every value of t.
func normalizeTree(t map[string]any) Tree {
	if t == nil {
		return Tree{}
	}
	return normalizeValue(t).(map[string]any)
}
