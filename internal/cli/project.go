package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/AntonioLangiu/Ceedling/internal/config"
	"github.com/AntonioLangiu/Ceedling/internal/plugin"
)

// projectEnvVar names the project file when --project is not given.
const projectEnvVar = "CEEDLING_MAIN_PROJECT_FILE"

// lookPath resolves tool executables during validation. Tests replace it.
var lookPath config.LookPathFunc = exec.LookPath

// errNoProject is returned when no project file can be found.
var errNoProject = errors.New("no project file found; run 'ceedling-config init' or pass --project")

// projectFile returns the project file to load: --project, then the
// environment, then the nearest project file above the working directory.
func projectFile() (string, error) {
	if flagProject != "" {
		return flagProject, nil
	}
	if p := os.Getenv(projectEnvVar); p != "" {
		return p, nil
	}
	found, err := config.FindProjectFile(".")
	if err != nil {
		return "", fmt.Errorf("finding project file: %w", err)
	}
	if found == "" {
		return "", errNoProject
	}
	return found, nil
}

// project is a loaded and resolved project file.
type project struct {
	path         string
	configurator *config.Configurator
	// published is nil when resolution failed.
	published *config.Context
}

// newConfigurator wires the plugin discoverer and fragment loader into a
// configurator. Environment values are collected rather than exported, so
// inspecting a project never changes the process environment.
func newConfigurator() (*config.Configurator, error) {
	return config.New(
		config.WithDiscoverer(plugin.NewDiscoverer()),
		config.WithLoader(plugin.NewLoader(0)),
		config.WithEnvSink(config.EnvMap{}),
		config.WithLookPath(lookPath),
		config.WithVerbosity(flagVerbosity),
	)
}

// loadProject loads the project file and runs the resolution pipeline. On a
// resolution error the project is still returned so callers can report the
// validation result.
func loadProject(ctx context.Context) (*project, error) {
	path, err := projectFile()
	if err != nil {
		return nil, err
	}
	tree, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	c, err := newConfigurator()
	if err != nil {
		return nil, err
	}

	p := &project{path: path, configurator: c}
	p.published, err = c.Resolve(ctx, tree)
	return p, err
}
