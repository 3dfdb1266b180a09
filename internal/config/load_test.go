package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindProjectFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, filepath.Join(root, "project.yml"), "---\n")

	got, err := FindProjectFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "project.yml"), got)
}

func TestFindProjectFile_PrefersToml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "project.yml"), "---\n")
	writeFile(t, filepath.Join(root, "project.toml"), "")

	got, err := FindProjectFile(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "project.toml"), got)
}

func TestFindProjectFile_NotFound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got, err := FindProjectFile(root)
	require.NoError(t, err)
	// Whatever is found lies above the temp dir, never inside it.
	assert.False(t, strings.HasPrefix(got, root))
}

func TestLoadFile_TOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.toml")
	writeFile(t, path, `
[project]
build_root = "build"
jobs = 2

[paths]
test = ["test/**"]

[[environment]]
path = ["a", "b"]
`)

	tree, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "build", section(tree, SectionProject)["build_root"])
	assert.Equal(t, int64(2), section(tree, SectionProject)["jobs"])
	assert.Equal(t, []any{"test/**"}, section(tree, SectionPaths)["test"])
	assert.Equal(t, []any{map[string]any{"path": []any{"a", "b"}}}, tree[SectionEnvironment])
}

func TestLoadFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.yml")
	writeFile(t, path, `---
:project:
  :build_root: build
  :jobs: 2
:paths:
  :test:
    - +:test/**
:environment:
  - :path:
    - a
    - b
`)

	tree, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "build", section(tree, SectionProject)["build_root"])
	assert.Equal(t, int64(2), section(tree, SectionProject)["jobs"])
	assert.Equal(t, []any{"+:test/**"}, section(tree, SectionPaths)["test"])
	assert.Equal(t, []any{map[string]any{"path": []any{"a", "b"}}}, tree[SectionEnvironment])
}

func TestLoadFile_YAMLSymbolValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.yml")
	writeFile(t, path, `---
:project:
  :build_root: build
:cmock:
  :plugins:
    - :ignore
    - ignore
    - :callback
:tools:
  :test_fixture:
    :executable: ./run
    :stderr_redirect: :auto
:paths:
  :test:
    - +:test/**
    - ":"
`)

	tree, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []any{"ignore", "ignore", "callback"}, section(tree, SectionMock)["plugins"])
	fixture := section(tree, SectionTools)["test_fixture"].(map[string]any)
	assert.Equal(t, StderrAuto, fixture["stderr_redirect"])
	assert.Equal(t, []any{"+:test/**", ":"}, section(tree, SectionPaths)["test"])

	cfg := PopulateMockDefaults(tree, VerbosityNormal)
	assert.Equal(t, []string{"ignore", "callback"}, cfg.Plugins)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[project\n")
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	ini := filepath.Join(dir, "project.ini")
	writeFile(t, ini, "x=1")
	_, err = LoadFile(ini)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestDecode_EmptyDocuments(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.toml", "a.yml", "a.yaml"} {
		tree, err := Decode(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, Tree{}, tree, name)
	}
}
