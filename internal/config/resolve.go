package config

import (
	"context"
	"fmt"
)

// PublishedSections are the top-level sections Resolve publishes verbatim
// alongside the flattened names.
var PublishedSections = []string{SectionEnvironment, SectionPlugins, SectionTools}

// Resolve runs the full pipeline over tree in place:
//
//  1. built-in defaults underneath the project values
//  2. plugin discovery, fragments over and plugin defaults underneath
//  3. mock generator defaults
//  4. tool setup and tool_<name> argument supplements
//  5. environment, then path, evaluation
//  6. path standardization
//  7. validation
//  8. build and publish, then task plugin references
//
// Any error stops the pipeline and leaves tree as far as it got.
func (c *Configurator) Resolve(ctx context.Context, tree Tree) (*Context, error) {
	if tree == nil {
		return nil, fmt.Errorf("resolving configuration: nil tree")
	}

	c.PopulateDefaults(tree)

	refs, err := c.FindAndMergePlugins(ctx, tree)
	if err != nil {
		return nil, err
	}

	if err := c.PopulateMockDefaults(tree); err != nil {
		return nil, err
	}

	ToolsSetup(tree)
	SupplementToolArguments(tree)

	if err := EvalEnvironment(tree, c.evaluator, c.env); err != nil {
		return nil, fmt.Errorf("evaluating environment: %w", err)
	}
	if err := EvalPaths(tree, c.evaluator); err != nil {
		return nil, fmt.Errorf("evaluating paths: %w", err)
	}
	StandardizePaths(tree)

	if err := c.Validate(tree); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	if _, err := c.Build(tree, PublishedSections...); err != nil {
		return nil, err
	}
	published, err := c.InsertTaskPlugins(refs.Task)
	if err != nil {
		return nil, err
	}
	c.logger.Info("configuration resolved",
		"names", len(published.Names()),
		"task_plugins", len(refs.Task),
		"script_plugins", len(refs.Script))
	return published, nil
}
