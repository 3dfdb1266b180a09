package config

import (
	"sort"
	"strconv"
	"strings"
)

// Context is the read-only view published after a build. It answers lookups
// by flattened name and exposes the top-level sections that were published
// verbatim.
type Context struct {
	ns          Namespace
	top         Tree
	fingerprint uint64
}

func newContext(ns Namespace, top Tree) *Context {
	cp := ns.Clone()
	return &Context{ns: cp, top: cloneTree(top), fingerprint: fingerprint(cp)}
}

// Get returns the value published under name. Names are matched
// case-insensitively.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.ns[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Has reports whether name is published.
func (c *Context) Has(name string) bool {
	_, ok := c.ns[strings.ToLower(name)]
	return ok
}

// String returns the value under name rendered as a string, or "" when the
// name is not published.
func (c *Context) String(name string) string {
	v, _ := c.Get(name)
	return scalarString(v)
}

// Bool returns the boolean under name. Missing or non-boolean values are false.
func (c *Context) Bool(name string) bool {
	v, _ := c.Get(name)
	b, _ := v.(bool)
	return b
}

// Int returns the integer under name. Numeric strings are parsed; anything
// else is 0.
func (c *Context) Int(name string) int64 {
	v, _ := c.Get(name)
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

// Strings returns the sequence under name as strings. A scalar yields a
// one-element slice and a missing name nil.
func (c *Context) Strings(name string) []string {
	v, ok := c.Get(name)
	if !ok || v == nil {
		return nil
	}
	if seq, isSeq := asSequence(v); isSeq {
		return stringsOf(seq)
	}
	return []string{scalarString(v)}
}

// Names lists every published name in lexical order.
func (c *Context) Names() []string {
	return c.ns.Names()
}

// Namespace returns a copy of the flat namespace.
func (c *Context) Namespace() Namespace {
	return c.ns.Clone()
}

// Top returns a copy of a top-level section published verbatim by Build.
func (c *Context) Top(key string) (any, bool) {
	v, ok := c.top[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// TopKeys lists the verbatim top-level sections.
func (c *Context) TopKeys() []string {
	return sortedKeys(c.top)
}

// Tools decodes the published tools section. Entries that do not decode are
// skipped; the validator has already reported them.
func (c *Context) Tools() map[string]Tool {
	tools := make(map[string]Tool)
	raw, _ := c.top[SectionTools].(map[string]any)
	for name, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		tool, err := DecodeTool(m)
		if err != nil {
			continue
		}
		tools[name] = tool
	}
	return tools
}

// Paths returns every paths_* list keyed by its name inside the paths
// section.
func (c *Context) Paths() map[string][]string {
	prefix := SectionPaths + NameSeparator
	out := make(map[string][]string)
	for name := range c.ns {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		out[strings.TrimPrefix(name, prefix)] = c.Strings(name)
	}
	return out
}

// Plugins returns a copy of the published plugins section.
func (c *Context) Plugins() Tree {
	v, _ := c.Top(SectionPlugins)
	m, _ := v.(map[string]any)
	if m == nil {
		return Tree{}
	}
	return m
}

// Environment returns the evaluated environment entries keyed by the
// variable name as written in the configuration.
func (c *Context) Environment() map[string]string {
	out := make(map[string]string)
	entries, _ := asSequence(c.top[SectionEnvironment])
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for name, v := range entry {
			out[name] = scalarString(v)
		}
	}
	return out
}

// EnvironmentNames lists the environment variable names in sorted order.
func (c *Context) EnvironmentNames() []string {
	env := c.Environment()
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint identifies the namespace this context publishes.
func (c *Context) Fingerprint() uint64 {
	return c.fingerprint
}
