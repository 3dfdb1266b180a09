package config

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed defaults/*.toml
var defaultsFS embed.FS

// Layer is an immutable named default tree, optionally guarded by a
// predicate over the tree it is applied to.
type Layer struct {
	Name  string
	Guard func(Tree) bool
	tree  Tree
}

// NewLayer builds a layer from a copy of tree. A nil guard always applies.
func NewLayer(name string, tree Tree, guard func(Tree) bool) Layer {
	return Layer{Name: name, Guard: guard, tree: cloneTree(tree)}
}

// Tree returns a copy of the layer's values.
func (l Layer) Tree() Tree {
	return cloneTree(l.tree)
}

// Applies reports whether the layer's guard admits t.
func (l Layer) Applies(t Tree) bool {
	return l.Guard == nil || l.Guard(t)
}

// Catalog is the ordered list of built-in default layers.
type Catalog struct {
	base   Layer
	layers []Layer
}

// catalogOrder fixes the order tool layers are applied in; later guards may
// read flags that earlier layers filled.
var catalogOrder = []struct {
	name  string
	guard func(Tree) bool
}{
	{"tools_test", nil},
	{"tools_test_preprocessors", func(t Tree) bool {
		return truthy(t, "project.use_test_preprocessor")
	}},
	{"tools_test_dependencies", func(t Tree) bool {
		return truthy(t, "project.use_auxiliary_dependencies")
	}},
	{"tools_release", func(t Tree) bool {
		return truthy(t, "project.release_build")
	}},
	{"tools_release_assembler", func(t Tree) bool {
		return truthy(t, "project.release_build") && truthy(t, "release_build.use_assembly")
	}},
	{"tools_release_dependencies", func(t Tree) bool {
		return truthy(t, "project.release_build") && truthy(t, "project.use_auxiliary_dependencies")
	}},
}

// NewCatalog decodes the embedded default layers.
func NewCatalog() (*Catalog, error) {
	base, err := decodeLayer("base")
	if err != nil {
		return nil, err
	}
	c := &Catalog{base: NewLayer("base", base, nil)}
	for _, entry := range catalogOrder {
		t, err := decodeLayer(entry.name)
		if err != nil {
			return nil, err
		}
		c.layers = append(c.layers, NewLayer(entry.name, t, entry.guard))
	}
	return c, nil
}

func decodeLayer(name string) (Tree, error) {
	data, err := defaultsFS.ReadFile("defaults/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("reading default layer %s: %w", name, err)
	}
	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("decoding default layer %s: %w", name, err)
	}
	return normalizeTree(raw), nil
}

// Base returns the skeleton layer.
func (c *Catalog) Base() Layer {
	return c.base
}

// Layers returns the guarded tool layers in application order.
func (c *Catalog) Layers() []Layer {
	out := make([]Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Apply fills tree from the skeleton and then from each tool layer whose
// guard admits the tree, in catalog order. It returns the names of the
// layers applied.
func (c *Catalog) Apply(tree Tree) []string {
	PopulateDefaults(tree, c.base.tree)
	applied := []string{c.base.Name}
	for _, l := range c.layers {
		if !l.Applies(tree) {
			continue
		}
		PopulateDefaults(tree, l.tree)
		applied = append(applied, l.Name)
	}
	return applied
}

// catalogTools lists the tool entries owned by the catalog.
var catalogTools = []string{
	"test_compiler",
	"test_linker",
	"test_fixture",
	"test_includes_preprocessor",
	"test_file_preprocessor",
	"test_dependencies_generator",
	"release_compiler",
	"release_assembler",
	"release_linker",
	"release_dependencies_generator",
}

// ResetToolDefaults removes every catalog-owned tool from tree so the next
// Apply starts from the built-in definitions.
func ResetToolDefaults(tree Tree) {
	tools := section(tree, SectionTools)
	if tools == nil {
		return
	}
	for _, name := range catalogTools {
		delete(tools, name)
	}
}
