package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// EnvSink receives the environment variables projected from the
// environment section.
type EnvSink interface {
	Setenv(key, value string) error
}

// ProcessEnv writes to the real process environment.
type ProcessEnv struct{}

// Setenv calls os.Setenv.
func (ProcessEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

// EnvMap collects variables in memory instead of touching the process.
type EnvMap map[string]string

// Setenv records key=value.
func (m EnvMap) Setenv(key, value string) error {
	m[key] = value
	return nil
}

// Lookup returns an EnvFunc that sees the variables recorded in m before
// falling back to fallback, so later entries can refer to earlier ones.
func (m EnvMap) Lookup(fallback EnvFunc) EnvFunc {
	return func(key string) (string, bool) {
		if v, ok := m[key]; ok {
			return v, true
		}
		if fallback == nil {
			return "", false
		}
		return fallback(key)
	}
}

// sinkLookup returns the lookup an evaluator should use alongside sink.
// ProcessEnv writes are already visible through os.LookupEnv.
func sinkLookup(sink EnvSink) EnvFunc {
	if m, ok := sink.(EnvMap); ok {
		return m.Lookup(os.LookupEnv)
	}
	return os.LookupEnv
}

// searchPathVariable is joined with the platform list separator; every other
// variable is joined with no separator.
const searchPathVariable = "path"

// bindingsOf flattens t for use as an evaluation context. Collisions are
// reported by the validator, not here.
func bindingsOf(t Tree) Namespace {
	ns, _ := Flatten(t)
	return ns
}

// evalString evaluates s when it carries a marker.
func evalString(ev Evaluator, key, s string, bindings Namespace) (string, error) {
	if !HasExpression(s) {
		return s, nil
	}
	out, err := ev.Evaluate(s, bindings)
	if err != nil {
		return "", &EvalError{Key: key, Expr: s, Err: err}
	}
	return out, nil
}

// evalSequence evaluates every string element of the sequence under key.
func evalSequence(ev Evaluator, key string, v any, bindings Namespace) (any, error) {
	switch x := v.(type) {
	case string:
		return evalString(ev, key, x, bindings)
	default:
		seq, ok := asSequence(v)
		if !ok {
			return v, nil
		}
		out := make([]any, len(seq))
		for i, item := range seq {
			s, isString := item.(string)
			if !isString {
				out[i] = item
				continue
			}
			evaluated, err := evalString(ev, fmt.Sprintf("%s[%d]", key, i), s, bindings)
			if err != nil {
				return nil, err
			}
			out[i] = evaluated
		}
		return out, nil
	}
}

// EvalLoadPaths evaluates and standardizes plugins.load_paths in place.
func EvalLoadPaths(tree Tree, ev Evaluator) error {
	plugins := section(tree, SectionPlugins)
	if plugins == nil || plugins["load_paths"] == nil {
		return nil
	}
	evaluated, err := evalSequence(ev, "plugins.load_paths", plugins["load_paths"], bindingsOf(tree))
	if err != nil {
		return err
	}
	plugins["load_paths"] = standardizeList(evaluated)
	return nil
}

// EvalEnvironment evaluates each environment entry, joins sequence values
// and projects the result into sink under the upper-cased name. The joined
// string replaces the entry's value in tree.
func EvalEnvironment(tree Tree, ev Evaluator, sink EnvSink) error {
	entries, ok := asSequence(tree[SectionEnvironment])
	if !ok {
		return nil
	}
	bindings := bindingsOf(tree)
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(entry) {
			key := fmt.Sprintf("environment[%d].%s", i, name)
			items, ok := asSequence(entry[name])
			if !ok {
				items = []any{entry[name]}
			}
			parts := make([]string, 0, len(items))
			for j, item := range items {
				s, err := evalString(ev, fmt.Sprintf("%s[%d]", key, j), scalarString(item), bindings)
				if err != nil {
					return err
				}
				parts = append(parts, s)
			}
			sep := ""
			if strings.EqualFold(name, searchPathVariable) {
				sep = string(os.PathListSeparator)
			}
			joined := strings.Join(parts, sep)
			entry[name] = joined
			if err := sink.Setenv(strings.ToUpper(name), joined); err != nil {
				return fmt.Errorf("setting environment variable %s: %w", strings.ToUpper(name), err)
			}
		}
	}
	tree[SectionEnvironment] = entries
	return nil
}

// EvalPaths evaluates project.build_root, project.options_paths and every
// list in the paths section. The build root is evaluated first so the
// remaining entries can refer to it.
func EvalPaths(tree Tree, ev Evaluator) error {
	project := section(tree, SectionProject)
	if project != nil {
		if s, ok := project["build_root"].(string); ok {
			out, err := evalString(ev, "project.build_root", s, bindingsOf(tree))
			if err != nil {
				return err
			}
			project["build_root"] = out
		}
	}

	bindings := bindingsOf(tree)
	if project != nil && project["options_paths"] != nil {
		out, err := evalSequence(ev, "project.options_paths", project["options_paths"], bindings)
		if err != nil {
			return err
		}
		project["options_paths"] = out
	}

	paths := section(tree, SectionPaths)
	for _, key := range sortedKeys(paths) {
		out, err := evalSequence(ev, "paths."+key, paths[key], bindings)
		if err != nil {
			return err
		}
		paths[key] = out
	}
	return nil
}

// StandardizePath rewrites p into the canonical form: surrounding space
// trimmed, forward slashes, lexically cleaned, no trailing slash. A path
// still carrying an expression is not cleaned, since ".." must not cancel
// an element whose value is not known yet.
func StandardizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if !HasExpression(p) {
		p = path.Clean(p)
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// standardizeList standardizes a string or every string in a sequence.
func standardizeList(v any) any {
	if s, ok := v.(string); ok {
		return StandardizePath(s)
	}
	seq, ok := asSequence(v)
	if !ok {
		return v
	}
	out := make([]any, len(seq))
	for i, item := range seq {
		if s, ok := item.(string); ok {
			out[i] = StandardizePath(s)
			continue
		}
		out[i] = item
	}
	return out
}

// StandardizePaths canonicalizes the build root, options paths, mock path,
// every paths entry and every tool executable. A bare string under paths
// becomes a one-element sequence.
func StandardizePaths(tree Tree) {
	if project := section(tree, SectionProject); project != nil {
		if s, ok := project["build_root"].(string); ok {
			project["build_root"] = StandardizePath(s)
		}
		if project["options_paths"] != nil {
			project["options_paths"] = standardizeList(project["options_paths"])
		}
	}
	if cm := section(tree, SectionMock); cm != nil {
		if s, ok := cm["mock_path"].(string); ok {
			cm["mock_path"] = StandardizePath(s)
		}
	}
	paths := section(tree, SectionPaths)
	for key, list := range paths {
		if list == nil {
			paths[key] = []any{}
			continue
		}
		if _, ok := asSequence(list); !ok {
			list = []any{list}
		}
		paths[key] = standardizeList(list)
	}
	for _, raw := range section(tree, SectionTools) {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := tool["executable"].(string); ok {
			tool["executable"] = StandardizePath(s)
		}
	}
}
