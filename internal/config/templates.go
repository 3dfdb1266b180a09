package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/AntonioLangiu/Ceedling/internal/logging"
)

//go:embed all:templates
var templateFS embed.FS

// templatesRoot is the top-level directory in the embedded FS that contains
// all project templates.
const templatesRoot = "templates"

// DefaultTemplate is the scaffold used when none is named.
const DefaultTemplate = "toml"

// TemplateVars holds the values substituted into .tmpl files.
type TemplateVars struct {
	ProjectName string
	BuildRoot   string
	SourceDir   string
	TestDir     string
}

// withDefaults fills unset directories with the conventional layout.
func (v TemplateVars) withDefaults() TemplateVars {
	if v.BuildRoot == "" {
		v.BuildRoot = "build"
	}
	if v.SourceDir == "" {
		v.SourceDir = "src"
	}
	if v.TestDir == "" {
		v.TestDir = "test"
	}
	return v
}

// ListTemplates returns the names of the embedded project templates.
func ListTemplates() ([]string, error) {
	entries, err := templateFS.ReadDir(templatesRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// TemplateExists reports whether a template with the given name exists in the
// embedded filesystem.
func TemplateExists(name string) bool {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	info, err := fs.Stat(templateFS, templatesRoot+"/"+name)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RenderTemplate writes the named template into destDir. Files ending in
// ".tmpl" are executed with vars and written without the extension; other
// files are copied as they are. Existing files are skipped unless force is
// set. It returns the paths written.
func RenderTemplate(name, destDir string, vars TemplateVars, force bool) ([]string, error) {
	if !TemplateExists(name) {
		return nil, fmt.Errorf("template %q not found", name)
	}
	vars = vars.withDefaults()
	logger := templateLogger()

	templateDir := templatesRoot + "/" + name
	var created []string

	walkErr := fs.WalkDir(templateFS, templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking template %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		relPath := strings.TrimPrefix(path, templateDir+"/")
		isTmpl := strings.HasSuffix(relPath, ".tmpl")
		destFile := filepath.Join(destDir, filepath.FromSlash(strings.TrimSuffix(relPath, ".tmpl")))

		if _, statErr := os.Stat(destFile); statErr == nil {
			if !force {
				logger.Debug("skipping existing file", "path", destFile)
				return nil
			}
			logger.Debug("overwriting existing file", "path", destFile)
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(destFile), 0o755); mkdirErr != nil {
			return fmt.Errorf("creating directory for %s: %w", destFile, mkdirErr)
		}

		content, readErr := templateFS.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading embedded file %s: %w", path, readErr)
		}

		if isTmpl {
			tmpl, parseErr := template.New(d.Name()).Option("missingkey=error").Parse(string(content))
			if parseErr != nil {
				return fmt.Errorf("parsing template %s: %w", path, parseErr)
			}
			var buf bytes.Buffer
			if execErr := tmpl.Execute(&buf, vars); execErr != nil {
				return fmt.Errorf("executing template %s: %w", path, execErr)
			}
			content = buf.Bytes()
		}

		if writeErr := os.WriteFile(destFile, content, 0o644); writeErr != nil {
			return fmt.Errorf("writing file %s: %w", destFile, writeErr)
		}

		logger.Debug("created template file", "path", destFile)
		created = append(created, destFile)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return created, nil
}

func templateLogger() *log.Logger {
	return logging.New("init")
}
