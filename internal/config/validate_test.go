package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func foundPath(file string) (string, error) { return "/usr/bin/" + file, nil }

func missingPath(string) (string, error) { return "", exec.ErrNotFound }

// validTree returns a tree that passes every check when executables are
// found. Source and test directories are created under a temp dir.
func validTree(t *testing.T) Tree {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	test := filepath.Join(dir, "test")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(test, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(test, "test_main.c"), nil, 0o644))

	return Tree{
		SectionProject: map[string]any{"build_root": filepath.Join(dir, "build")},
		SectionPaths: map[string]any{
			"source": []any{src},
			"test":   []any{"+:" + test + "/**"},
		},
		SectionTools: map[string]any{
			"test_compiler": map[string]any{
				"name":            "default_test_compiler",
				"executable":      "gcc",
				"arguments":       []any{"-c"},
				"stderr_redirect": StderrNone,
				"background_exec": BackgroundNone,
				"optional":        false,
			},
		},
	}
}

func tool(tree Tree, name string) map[string]any {
	return section(tree, SectionTools)[name].(map[string]any)
}

func issueFields(issues []ValidationIssue) []string {
	fields := make([]string, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

// --- ValidationResult method tests ---

func TestValidationResult_Filters(t *testing.T) {
	t.Parallel()

	vr := &ValidationResult{}
	assert.False(t, vr.HasErrors())
	assert.False(t, vr.HasWarnings())

	addWarning(vr, "a", "warn")
	assert.False(t, vr.HasErrors())
	assert.True(t, vr.HasWarnings())

	addError(vr, "b", "err")
	assert.True(t, vr.HasErrors())
	assert.Len(t, vr.Errors(), 1)
	assert.Len(t, vr.Warnings(), 1)
	assert.Equal(t, "b", vr.Errors()[0].Field)
}

// --- Validator tests ---

func TestValidate_StructuralError(t *testing.T) {
	t.Parallel()

	vr, err := NewValidator(foundPath).Validate(Tree{SectionProject: map[string]any{}})

	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{SectionPaths, SectionTools}, se.Missing)
	assert.Nil(t, vr)
	assert.Contains(t, err.Error(), "paths, tools")
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	vr, err := NewValidator(foundPath).Validate(validTree(t))

	require.NoError(t, err)
	require.NotNil(t, vr)
	assert.Empty(t, vr.Issues)
}

func TestValidate_AggregatesEveryError(t *testing.T) {
	t.Parallel()

	tree := validTree(t)
	delete(section(tree, SectionPaths), "source")
	section(tree, SectionPaths)["include"] = []any{"/no/such/dir"}
	delete(tool(tree, "test_compiler"), "executable")
	tree[SectionPlugins] = map[string]any{"enabled": []any{"ghost"}}

	vr, err := NewValidator(foundPath).Validate(tree)

	var fs *ValidationFailureSet
	require.True(t, errors.As(err, &fs))
	assert.ElementsMatch(t, []string{
		"paths.source",
		"paths.include[0]",
		"tools.test_compiler.executable",
		"plugins.enabled",
	}, issueFields(fs.Errors()))
	assert.Equal(t, vr.Issues, fs.Issues)
	assert.Contains(t, err.Error(), "4 error(s)")
}

func TestValidate_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lookPath  LookPathFunc
		mutate    func(t *testing.T, tree Tree)
		wantField string
		wantMsg   string
	}{
		{
			name:     "empty build root",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				section(tree, SectionProject)["build_root"] = " "
			},
			wantField: "project.build_root",
			wantMsg:   "empty",
		},
		{
			name:     "paths entry not a list",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				section(tree, SectionPaths)["support"] = map[string]any{}
			},
			wantField: "paths.support",
			wantMsg:   "list",
		},
		{
			name:     "glob matching nothing",
			lookPath: foundPath,
			mutate: func(t *testing.T, tree Tree) {
				section(tree, SectionPaths)["support"] = []any{filepath.Join(t.TempDir(), "*.h")}
			},
			wantField: "paths.support[0]",
			wantMsg:   "matches nothing",
		},
		{
			name:     "missing options path",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				section(tree, SectionProject)["options_paths"] = []any{"/no/options"}
			},
			wantField: "project.options_paths[0]",
			wantMsg:   "does not exist",
		},
		{
			name:     "unknown stderr redirect",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				tool(tree, "test_compiler")["stderr_redirect"] = "cmd"
			},
			wantField: "tools.test_compiler.stderr_redirect",
			wantMsg:   "unrecognized value",
		},
		{
			name:     "arguments not a list",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				tool(tree, "test_compiler")["arguments"] = "-c"
			},
			wantField: "tools.test_compiler.arguments",
			wantMsg:   "list",
		},
		{
			name:     "tool not a mapping",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				section(tree, SectionTools)["broken"] = "gcc"
			},
			wantField: "tools.broken",
			wantMsg:   "mapping",
		},
		{
			name:      "executable not on search path",
			lookPath:  missingPath,
			mutate:    func(*testing.T, Tree) {},
			wantField: "tools.test_compiler.executable",
			wantMsg:   "not found",
		},
		{
			name:     "executable path does not exist",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				tool(tree, "test_compiler")["executable"] = "/no/such/gcc"
			},
			wantField: "tools.test_compiler.executable",
			wantMsg:   "does not exist",
		},
		{
			name:     "namespace collision",
			lookPath: foundPath,
			mutate: func(_ *testing.T, tree Tree) {
				tree["x"] = map[string]any{"y_z": int64(1)}
				tree["x_y"] = map[string]any{"z": int64(2)}
			},
			wantField: "x.y_z, x_y.z",
			wantMsg:   "x_y_z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := validTree(t)
			tt.mutate(t, tree)

			_, err := NewValidator(tt.lookPath).Validate(tree)

			var fs *ValidationFailureSet
			require.True(t, errors.As(err, &fs), "expected a failure set, got %v", err)
			require.Len(t, fs.Errors(), 1, fs.Error())
			assert.Equal(t, tt.wantField, fs.Errors()[0].Field)
			assert.Contains(t, fs.Errors()[0].Message, tt.wantMsg)
		})
	}
}

func TestValidate_SkipsLookupForOptionalAndTemplatedTools(t *testing.T) {
	t.Parallel()

	tree := validTree(t)
	tool(tree, "test_compiler")["optional"] = true
	section(tree, SectionTools)["test_fixture"] = map[string]any{
		"name":            "default_test_fixture",
		"executable":      "${1}",
		"stderr_redirect": StderrAuto,
		"background_exec": BackgroundNone,
	}

	_, err := NewValidator(missingPath).Validate(tree)
	require.NoError(t, err)
}

func TestValidate_EnabledPluginResolved(t *testing.T) {
	t.Parallel()

	tree := validTree(t)
	tree[SectionPlugins] = map[string]any{
		"enabled": []any{"report"},
		"report":  "/plugins/report",
	}

	_, err := NewValidator(foundPath).Validate(tree)
	require.NoError(t, err)
}

func TestValidate_EnvironmentShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		env       any
		wantField string
		wantMsg   string
	}{
		{
			name:      "table instead of list",
			env:       map[string]any{"cc": "gcc"},
			wantField: "environment",
			wantMsg:   "list of single-entry mappings",
		},
		{
			name:      "scalar entry",
			env:       []any{"CC=gcc"},
			wantField: "environment[0]",
			wantMsg:   "mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := validTree(t)
			tree[SectionEnvironment] = tt.env

			vr, err := NewValidator(foundPath).Validate(tree)

			var set *ValidationFailureSet
			require.True(t, errors.As(err, &set))
			require.Len(t, vr.Errors(), 1)
			assert.Equal(t, tt.wantField, vr.Errors()[0].Field)
			assert.Contains(t, vr.Errors()[0].Message, tt.wantMsg)
		})
	}
}

func TestValidate_EnvironmentMultiKeyEntryWarns(t *testing.T) {
	t.Parallel()

	tree := validTree(t)
	tree[SectionEnvironment] = []any{
		map[string]any{"cc": "gcc"},
		map[string]any{"a": "1", "b": "2"},
	}

	vr, err := NewValidator(foundPath).Validate(tree)
	require.NoError(t, err)
	require.Len(t, vr.Warnings(), 1)
	assert.Equal(t, "environment[1]", vr.Warnings()[0].Field)
}

func TestValidate_WarningDoesNotFail(t *testing.T) {
	t.Parallel()

	tree := validTree(t)
	tree[SectionPlugins] = map[string]any{"display_raw_test_results": "yes"}

	vr, err := NewValidator(foundPath).Validate(tree)

	require.NoError(t, err)
	require.Len(t, vr.Warnings(), 1)
	assert.Equal(t, "plugins.display_raw_test_results", vr.Warnings()[0].Field)
}
