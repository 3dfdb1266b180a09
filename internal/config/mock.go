package config

import (
	"path"
	"strings"
)

// testsBasePath is the build-root subdirectory holding test artifacts.
const testsBasePath = "test"

// exceptionsPlugin is the mock-generator plugin added when the project
// enables exceptions.
const exceptionsPlugin = "cexception"

// MockConfig is the fully-defaulted mock generator configuration. The mock
// builder is constructed from exactly this value set.
type MockConfig struct {
	MockPrefix            string
	EnforceStrictOrdering bool
	MockPath              string
	Verbosity             Verbosity
	Plugins               []string
	UnityHelper           string
	Includes              []string
	// Raw holds every key of the cmock section after defaulting, including
	// settings the engine does not interpret itself.
	Raw Tree
}

// MockBuilder constructs the mock generator from its configuration.
type MockBuilder interface {
	Manufacture(cfg MockConfig) error
}

// MockBuilderFunc adapts a function to MockBuilder.
type MockBuilderFunc func(cfg MockConfig) error

// Manufacture calls f(cfg).
func (f MockBuilderFunc) Manufacture(cfg MockConfig) error { return f(cfg) }

// joinPath joins elements with a single slash and no lexical cleaning, so
// an unevaluated element followed by ".." survives until evaluation.
func joinPath(elems ...string) string {
	var b strings.Builder
	for _, e := range elems {
		if e == "" {
			continue
		}
		if b.Len() > 0 {
			if !strings.HasSuffix(b.String(), "/") {
				b.WriteByte('/')
			}
			e = strings.TrimLeft(e, "/")
		}
		b.WriteString(e)
	}
	return b.String()
}

// PopulateMockDefaults fills the cmock section of tree in place and returns
// the derived configuration.
func PopulateMockDefaults(tree Tree, verbosity Verbosity) MockConfig {
	cm := ensureSection(tree, SectionMock)

	if cm["mock_prefix"] == nil {
		cm["mock_prefix"] = "Mock"
	}
	if cm["enforce_strict_ordering"] == nil {
		cm["enforce_strict_ordering"] = true
	}
	if cm["mock_path"] == nil {
		buildRoot, _ := lookup(tree, "project.build_root")
		cm["mock_path"] = joinPath(scalarString(buildRoot), testsBasePath, "mocks")
	}
	if cm["verbosity"] == nil {
		cm["verbosity"] = int64(verbosity)
	}

	plugins := uniqueStrings(seqOrEmpty(cm["plugins"]))
	if truthy(tree, "project.use_exceptions") && !containsString(plugins, exceptionsPlugin) {
		plugins = append(plugins, exceptionsPlugin)
	}
	cm["plugins"] = toSequence(plugins)

	if cm["unity_helper"] == nil {
		cm["unity_helper"] = false
	}
	includes := stringsOf(seqOrEmpty(cm["includes"]))
	helper, _ := cm["unity_helper"].(string)
	if helper != "" {
		includes = uniqueStrings(append(toSequence(includes), path.Base(helper)))
	}
	cm["includes"] = toSequence(includes)

	cfg := MockConfig{
		MockPrefix:  scalarString(cm["mock_prefix"]),
		MockPath:    scalarString(cm["mock_path"]),
		Verbosity:   verbosity,
		Plugins:     plugins,
		UnityHelper: helper,
		Includes:    includes,
		Raw:         cloneTree(cm),
	}
	cfg.EnforceStrictOrdering, _ = cm["enforce_strict_ordering"].(bool)
	if n, ok := cm["verbosity"].(int64); ok {
		cfg.Verbosity = Verbosity(n)
	}
	return cfg
}

func seqOrEmpty(v any) []any {
	seq, ok := asSequence(v)
	if !ok {
		if v == nil {
			return nil
		}
		return []any{v}
	}
	return seq
}

// uniqueStrings stringifies seq and drops repeats, keeping first occurrences.
func uniqueStrings(seq []any) []string {
	seen := make(map[string]bool, len(seq))
	out := make([]string, 0, len(seq))
	for _, s := range stringsOf(seq) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toSequence(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
