package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewCatalog()
	require.NoError(t, err)
	return cat
}

func toolNames(tree Tree) []string {
	return sortedKeys(section(tree, SectionTools))
}

func TestNewCatalog_LayerOrder(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)

	var names []string
	for _, l := range cat.Layers() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{
		"tools_test",
		"tools_test_preprocessors",
		"tools_test_dependencies",
		"tools_release",
		"tools_release_assembler",
		"tools_release_dependencies",
	}, names)
	assert.Equal(t, "base", cat.Base().Name)
}

func TestCatalog_BaseCreatesEverySection(t *testing.T) {
	t.Parallel()

	tree := Tree{}
	newTestCatalog(t).Apply(tree)

	for _, name := range []string{
		SectionProject, SectionPaths, SectionTools, SectionPlugins, SectionMock,
		SectionReleaseBuild, "defines", "flags", "libraries", "extension",
		"unity", "cexception", "test_runner",
	} {
		assert.NotNil(t, section(tree, name), name)
	}
	assert.Equal(t, []any{}, tree[SectionEnvironment])
}

func TestCatalog_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		project     map[string]any
		releaseOpts map[string]any
		wantLayers  []string
		wantTools   []string
	}{
		{
			name:       "test tools only",
			project:    map[string]any{},
			wantLayers: []string{"base", "tools_test"},
			wantTools:  []string{"test_compiler", "test_fixture", "test_linker"},
		},
		{
			name:       "release build disabled adds no release tools",
			project:    map[string]any{"release_build": false},
			wantLayers: []string{"base", "tools_test"},
			wantTools:  []string{"test_compiler", "test_fixture", "test_linker"},
		},
		{
			name:       "preprocessor",
			project:    map[string]any{"use_test_preprocessor": true},
			wantLayers: []string{"base", "tools_test", "tools_test_preprocessors"},
			wantTools: []string{
				"test_compiler", "test_file_preprocessor", "test_fixture",
				"test_includes_preprocessor", "test_linker",
			},
		},
		{
			name:       "release build",
			project:    map[string]any{"release_build": true},
			wantLayers: []string{"base", "tools_test", "tools_release"},
			wantTools: []string{
				"release_compiler", "release_linker",
				"test_compiler", "test_fixture", "test_linker",
			},
		},
		{
			name:        "release with assembly and dependencies",
			project:     map[string]any{"release_build": true, "use_auxiliary_dependencies": true},
			releaseOpts: map[string]any{"use_assembly": true},
			wantLayers: []string{
				"base", "tools_test", "tools_test_dependencies", "tools_release",
				"tools_release_assembler", "tools_release_dependencies",
			},
			wantTools: []string{
				"release_assembler", "release_compiler", "release_dependencies_generator",
				"release_linker", "test_compiler", "test_dependencies_generator",
				"test_fixture", "test_linker",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := Tree{SectionProject: tt.project}
			if tt.releaseOpts != nil {
				tree[SectionReleaseBuild] = tt.releaseOpts
			}

			applied := newTestCatalog(t).Apply(tree)

			assert.Equal(t, tt.wantLayers, applied)
			assert.Equal(t, tt.wantTools, toolNames(tree))
		})
	}
}

func TestCatalog_UserToolWins(t *testing.T) {
	t.Parallel()

	tree := Tree{
		SectionTools: map[string]any{
			"test_compiler": map[string]any{"executable": "clang"},
		},
	}
	newTestCatalog(t).Apply(tree)

	compiler := section(tree, SectionTools)["test_compiler"].(map[string]any)
	assert.Equal(t, "clang", compiler["executable"])
	// Keys the user did not set still come from the layer.
	assert.Equal(t, "default_test_compiler", compiler["name"])
}

func TestCatalog_ApplyIdempotent(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	tree := Tree{SectionProject: map[string]any{"release_build": true}}
	cat.Apply(tree)
	once := cloneTree(tree)
	cat.Apply(tree)

	assert.Equal(t, once, tree)
}

func TestCatalog_LayersAreNotMutated(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	tree := Tree{}
	cat.Apply(tree)
	section(tree, SectionProject)["use_exceptions"] = "edited"

	assert.Equal(t, true, section(cat.Base().Tree(), SectionProject)["use_exceptions"])
}

func TestLayer_Guard(t *testing.T) {
	t.Parallel()

	always := NewLayer("always", Tree{}, nil)
	never := NewLayer("never", Tree{}, func(Tree) bool { return false })

	assert.True(t, always.Applies(Tree{}))
	assert.False(t, never.Applies(Tree{}))
}

func TestResetToolDefaults(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog(t)
	tree := Tree{
		SectionTools: map[string]any{
			"custom": map[string]any{"executable": "lint"},
		},
	}
	cat.Apply(tree)
	require.Contains(t, toolNames(tree), "test_compiler")

	ResetToolDefaults(tree)

	assert.Equal(t, []string{"custom"}, toolNames(tree))
}
