package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonioLangiu/Ceedling/internal/config"
)

var (
	initFlagName  string
	initFlagForce bool
)

// initCmd implements "ceedling-config init [template]". It runs without an
// existing project file, so it is safe in a fresh directory.
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Initialize a new project from a template",
	Long: `Initialize a project directory by rendering an embedded project template:
a project file plus empty source and test directories. Existing files are
preserved unless --force is supplied.

Templates: toml (project.toml) and yaml (project.yml).

Examples:
  ceedling-config init                      # project.toml in the current directory
  ceedling-config init yaml --name widget   # project.yml with an explicit name
  ceedling-config init --force              # overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initFlagName, "name", "n", "", "Project name (defaults to current directory name)")
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	templateName := config.DefaultTemplate
	if len(args) > 0 {
		templateName = args[0]
	}

	if !config.TemplateExists(templateName) {
		available, listErr := config.ListTemplates()
		if listErr != nil {
			return fmt.Errorf("listing available templates: %w", listErr)
		}
		return fmt.Errorf("template %q not found; available templates: %s",
			templateName, strings.Join(available, ", "))
	}

	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	projectName := initFlagName
	if projectName == "" {
		projectName = filepath.Base(destDir)
	}
	if strings.ContainsAny(projectName, `/\`) || strings.Contains(projectName, "..") {
		return fmt.Errorf("invalid project name %q: must not contain path separators", projectName)
	}

	// Any project file, whatever its format, blocks a new one.
	if !initFlagForce {
		for _, name := range config.ProjectFileNames {
			if _, statErr := os.Stat(filepath.Join(destDir, name)); statErr == nil {
				return fmt.Errorf("%s already exists in %s; use --force to overwrite", name, destDir)
			}
		}
	}

	created, err := config.RenderTemplate(templateName, destDir, config.TemplateVars{ProjectName: projectName}, initFlagForce)
	if err != nil {
		return fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	// User-facing output goes to stderr.
	stderr := os.Stderr
	fmt.Fprintf(stderr, "Initialized project %q from template %q\n\n", projectName, templateName)

	if len(created) > 0 {
		fmt.Fprintln(stderr, "Created files:")
		for _, f := range created {
			rel, relErr := filepath.Rel(destDir, f)
			if relErr != nil {
				rel = f
			}
			fmt.Fprintf(stderr, "  %s\n", rel)
		}
		fmt.Fprintln(stderr)
	}

	fmt.Fprintln(stderr, "Next steps:")
	fmt.Fprintln(stderr, "  1. Add sources to src/ and tests to test/")
	fmt.Fprintln(stderr, "  2. Run: ceedling-config config validate")
	return nil
}
