package config

import (
	"context"
	"fmt"
)

// Contribution is everything the enabled plugins bring to a run, in
// discovery order.
type Contribution struct {
	// TaskPlugins and ScriptPlugins are references handed back to the
	// caller; the engine does not load them.
	TaskPlugins   []string
	ScriptPlugins []string
	// ConfigFragments are merged over the tree.
	ConfigFragments []string
	// DefaultLayers are merged underneath the tree.
	DefaultLayers []string
	// Paths maps each found plugin to its directory.
	Paths map[string]string
}

// PluginDiscoverer locates the enabled plugins under the load paths.
type PluginDiscoverer interface {
	Discover(ctx context.Context, loadPaths, enabled []string) (Contribution, error)
}

// FragmentLoader reads configuration fragments. Results are returned in the
// order of paths.
type FragmentLoader interface {
	LoadAll(ctx context.Context, paths []string) ([]Tree, error)
}

// PluginRefs are the plugin references collected by FindAndMergePlugins.
type PluginRefs struct {
	Task   []string
	Script []string
}

// FindAndMergePlugins evaluates the plugin load paths, discovers the
// enabled plugins, merges their configuration fragments over tree and their
// default layers underneath it, and records each plugin's location in the
// plugins section. Validation is left to a later step.
func (c *Configurator) FindAndMergePlugins(ctx context.Context, tree Tree) (PluginRefs, error) {
	if err := EvalLoadPaths(tree, c.evaluator); err != nil {
		return PluginRefs{}, fmt.Errorf("evaluating plugin load paths: %w", err)
	}
	plugins := ensureSection(tree, SectionPlugins)

	var contrib Contribution
	if c.discoverer != nil {
		loadPaths, _ := asSequence(plugins["load_paths"])
		enabled, _ := asSequence(plugins["enabled"])
		var err error
		contrib, err = c.discoverer.Discover(ctx, stringsOf(loadPaths), stringsOf(enabled))
		if err != nil {
			return PluginRefs{}, fmt.Errorf("discovering plugins: %w", err)
		}
	}

	if len(contrib.ConfigFragments) > 0 || len(contrib.DefaultLayers) > 0 {
		if c.loader == nil {
			return PluginRefs{}, fmt.Errorf("plugins contribute configuration but no fragment loader is set")
		}
	}

	if len(contrib.ConfigFragments) > 0 {
		fragments, err := c.loader.LoadAll(ctx, contrib.ConfigFragments)
		if err != nil {
			return PluginRefs{}, fmt.Errorf("loading plugin configuration: %w", err)
		}
		for i, fragment := range fragments {
			MergeInto(tree, fragment)
			c.logger.Debug("merged plugin configuration", "path", contrib.ConfigFragments[i])
		}
	}

	if len(contrib.DefaultLayers) > 0 {
		layers, err := c.loader.LoadAll(ctx, contrib.DefaultLayers)
		if err != nil {
			return PluginRefs{}, fmt.Errorf("loading plugin defaults: %w", err)
		}
		for i, layer := range layers {
			PopulateDefaults(tree, layer)
			c.logger.Debug("applied plugin defaults", "path", contrib.DefaultLayers[i])
		}
	}

	// Fragments may have replaced the section.
	plugins = ensureSection(tree, SectionPlugins)
	if plugins["display_raw_test_results"] == nil {
		plugins["display_raw_test_results"] = true
	}
	for name, dir := range contrib.Paths {
		plugins[name] = dir
	}

	c.taskPlugins = append([]string(nil), contrib.TaskPlugins...)
	c.scriptPlugins = append([]string(nil), contrib.ScriptPlugins...)
	return PluginRefs{Task: c.TaskPlugins(), Script: c.ScriptPlugins()}, nil
}
