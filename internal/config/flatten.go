package config

import (
	"fmt"
	"sort"
	"strings"
)

// NameSeparator joins the path segments of a flattened name.
const NameSeparator = "_"

// Namespace is the flat set of published names produced by Flatten.
type Namespace map[string]any

// Collision records two tree paths that flatten to the same name.
type Collision struct {
	Name  string
	Paths []string
}

// CollisionError is returned by Flatten when the tree is not injective
// under the naming scheme.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		parts = append(parts, fmt.Sprintf("%s <- %s", c.Name, strings.Join(c.Paths, ", ")))
	}
	return "flattened name collision: " + strings.Join(parts, "; ")
}

// Flatten converts t into a flat namespace. Every leaf (a scalar, a sequence
// or nil) gets exactly one entry named by its lower-cased path joined with
// NameSeparator; empty mappings contribute nothing. Values are copied.
//
// When two paths map to the same name the first path in lexical order keeps
// the entry and a *CollisionError describing every clash is returned along
// with the namespace.
func Flatten(t Tree) (Namespace, error) {
	ns := make(Namespace)
	origin := make(map[string]string)
	clashes := make(map[string][]string)

	var walk func(m map[string]any, prefix, dotted string)
	walk = func(m map[string]any, prefix, dotted string) {
		for _, key := range sortedKeys(m) {
			name := strings.ToLower(key)
			path := key
			if prefix != "" {
				name = prefix + NameSeparator + name
				path = dotted + "." + key
			}
			if nested, ok := m[key].(map[string]any); ok {
				walk(nested, name, path)
				continue
			}
			if first, taken := origin[name]; taken {
				if len(clashes[name]) == 0 {
					clashes[name] = append(clashes[name], first)
				}
				clashes[name] = append(clashes[name], path)
				continue
			}
			origin[name] = path
			ns[name] = cloneValue(m[key])
		}
	}
	walk(t, "", "")

	if len(clashes) == 0 {
		return ns, nil
	}
	names := make([]string, 0, len(clashes))
	for name := range clashes {
		names = append(names, name)
	}
	sort.Strings(names)
	ce := &CollisionError{}
	for _, name := range names {
		ce.Collisions = append(ce.Collisions, Collision{Name: name, Paths: clashes[name]})
	}
	return ns, ce
}

// Names returns the entries of ns in lexical order.
func (ns Namespace) Names() []string {
	return sortedKeys(ns)
}

// Clone returns a deep copy of ns.
func (ns Namespace) Clone() Namespace {
	out := make(Namespace, len(ns))
	for k, v := range ns {
		out[k] = cloneValue(v)
	}
	return out
}
