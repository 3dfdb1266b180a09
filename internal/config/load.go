package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ProjectFileNames are the project file names searched for, in preference
// order.
var ProjectFileNames = []string{"project.toml", "project.yml", "project.yaml"}

// FindProjectFile walks up from startDir to find a project file.
// Returns the absolute path to the file, or an empty string if not found.
// Stops at the filesystem root.
func FindProjectFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		for _, name := range ProjectFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			return "", nil
		}
		dir = parent
	}
}

// LoadFile parses a TOML or YAML file, chosen by extension, into a Tree.
func LoadFile(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// Decode parses data as TOML or YAML according to the extension of name.
// An empty document yields an empty tree.
func Decode(name string, data []byte) (Tree, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, err
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		raw = trimSymbolKeys(raw)
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", filepath.Ext(name))
	}
	return normalizeTree(raw), nil
}

// symbolPattern matches a scalar written as a symbol, such as ":auto".
var symbolPattern = regexp.MustCompile(`^:[A-Za-z_]\w*$`)

// trimSymbolKeys drops the leading colon from keys written in the
// ":project:" style common in existing YAML project files, and from
// symbol scalars such as ":auto".
func trimSymbolKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.TrimPrefix(k, ":")] = trimSymbolValue(v)
	}
	return out
}

func trimSymbolValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return trimSymbolKeys(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = trimSymbolValue(x[i])
		}
		return out
	case string:
		if symbolPattern.MatchString(x) {
			return x[1:]
		}
		return x
	default:
		return v
	}
}
