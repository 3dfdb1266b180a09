package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks an issue that fails resolution.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks an issue that is reported but does not fail
	// resolution.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "project.build_root"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// StructuralError reports missing required sections. It aborts validation
// before any advisory check runs.
type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return "missing required configuration section(s): " + strings.Join(e.Missing, ", ")
}

// ValidationFailureSet carries every advisory violation found in one pass.
type ValidationFailureSet struct {
	ValidationResult
}

func (e *ValidationFailureSet) Error() string {
	errs := e.Errors()
	msgs := make([]string, 0, len(errs))
	for _, issue := range errs {
		msgs = append(msgs, fmt.Sprintf("[%s] %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("configuration has %d error(s): %s", len(errs), strings.Join(msgs, "; "))
}

// requiredSections must exist or validation fails immediately.
var requiredSections = []string{SectionProject, SectionPaths, SectionTools}

// requiredValues must be present once the sections exist.
var requiredValues = []string{"project.build_root", "paths.test", "paths.source"}

// pathPrefixes mark include/exclude path entries; the prefix is not part
// of the path.
var pathPrefixes = []string{"+:", "-:"}

// LookPathFunc finds an executable on the search path. exec.LookPath
// satisfies it.
type LookPathFunc func(file string) (string, error)

// Validator checks a resolved tree.
type Validator struct {
	lookPath LookPathFunc
	structs  *validator.Validate
}

// NewValidator returns a Validator. A nil lookPath uses exec.LookPath.
func NewValidator(lookPath LookPathFunc) *Validator {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return &Validator{lookPath: lookPath, structs: v}
}

// Validate runs the required-section check and, when it passes, every
// advisory check. It returns a *StructuralError, a *ValidationFailureSet
// holding every error found, or nil. The result also lists warnings and is
// nil only on a structural failure.
func (v *Validator) Validate(tree Tree) (*ValidationResult, error) {
	var missing []string
	for _, name := range requiredSections {
		if section(tree, name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &StructuralError{Missing: missing}
	}

	vr := &ValidationResult{}
	v.validateRequiredValues(vr, tree)
	v.validatePaths(vr, tree)
	v.validateTools(vr, tree)
	v.validatePlugins(vr, tree)
	v.validateEnvironment(vr, tree)
	v.validateNamespace(vr, tree)

	if vr.HasErrors() {
		return vr, &ValidationFailureSet{ValidationResult: *vr}
	}
	return vr, nil
}

func (v *Validator) validateRequiredValues(vr *ValidationResult, tree Tree) {
	for _, field := range requiredValues {
		val, ok := lookup(tree, field)
		if !ok || val == nil {
			addError(vr, field, "required value is missing")
			continue
		}
		if s, isString := val.(string); isString && strings.TrimSpace(s) == "" {
			addError(vr, field, "required value is empty")
		}
	}
}

func (v *Validator) validatePaths(vr *ValidationResult, tree Tree) {
	if project := section(tree, SectionProject); project != nil {
		seq, _ := asSequence(project["options_paths"])
		for i, p := range stringsOf(seq) {
			checkPath(vr, fmt.Sprintf("project.options_paths[%d]", i), p)
		}
	}
	paths := section(tree, SectionPaths)
	for _, key := range sortedKeys(paths) {
		seq, ok := asSequence(paths[key])
		if !ok {
			addError(vr, "paths."+key, "must be a list of paths")
			continue
		}
		for i, p := range stringsOf(seq) {
			checkPath(vr, fmt.Sprintf("paths.%s[%d]", key, i), p)
		}
	}
}

// checkPath records an error when p neither exists nor, as a glob, matches
// anything.
func checkPath(vr *ValidationResult, field, p string) {
	for _, prefix := range pathPrefixes {
		p = strings.TrimPrefix(p, prefix)
	}
	if p == "" {
		addError(vr, field, "path is empty")
		return
	}
	if strings.ContainsAny(p, "*?[{") {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			addError(vr, field, fmt.Sprintf("invalid glob %q: %v", p, err))
			return
		}
		if len(matches) == 0 {
			addError(vr, field, fmt.Sprintf("glob %q matches nothing", p))
		}
		return
	}
	if _, err := os.Stat(p); err != nil {
		addError(vr, field, fmt.Sprintf("path %q does not exist", p))
	}
}

func (v *Validator) validateTools(vr *ValidationResult, tree Tree) {
	tools := section(tree, SectionTools)
	for _, name := range sortedKeys(tools) {
		prefix := "tools." + name
		raw, ok := tools[name].(map[string]any)
		if !ok {
			addError(vr, prefix, "tool definition must be a mapping")
			continue
		}
		if args, present := raw["arguments"]; present && args != nil {
			if _, isSeq := asSequence(args); !isSeq {
				addError(vr, prefix+".arguments", "must be a list")
				continue
			}
		}
		tool, err := DecodeTool(raw)
		if err != nil {
			addError(vr, prefix, err.Error())
			continue
		}
		if err := v.structs.Struct(tool); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				addError(vr, prefix, err.Error())
				continue
			}
			for _, fe := range fieldErrs {
				addError(vr, prefix+"."+fe.Field(), describeFieldError(fe))
			}
			continue
		}
		if tool.Optional || tool.IsTemplated() {
			continue
		}
		if strings.Contains(tool.Executable, "/") {
			if _, err := os.Stat(tool.Executable); err != nil {
				addError(vr, prefix+".executable", fmt.Sprintf("executable %q does not exist", tool.Executable))
			}
			continue
		}
		if _, err := v.lookPath(tool.Executable); err != nil {
			addError(vr, prefix+".executable", fmt.Sprintf("executable %q not found in search path", tool.Executable))
		}
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("unrecognized value %q; must be one of: %s", fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func (v *Validator) validatePlugins(vr *ValidationResult, tree Tree) {
	plugins := section(tree, SectionPlugins)
	if plugins == nil {
		return
	}
	enabled, _ := asSequence(plugins["enabled"])
	for _, name := range stringsOf(enabled) {
		loc, ok := plugins[name].(string)
		if !ok || loc == "" {
			addError(vr, "plugins.enabled", fmt.Sprintf("plugin %q not found in any load path", name))
		}
	}
	if display, ok := plugins["display_raw_test_results"]; ok {
		if _, isBool := display.(bool); !isBool {
			addWarning(vr, "plugins.display_raw_test_results", "expected a boolean")
		}
	}
}

func (v *Validator) validateNamespace(vr *ValidationResult, tree Tree) {
	_, err := Flatten(tree)
	var ce *CollisionError
	if !errors.As(err, &ce) {
		return
	}
	for _, c := range ce.Collisions {
		addError(vr, strings.Join(c.Paths, ", "), fmt.Sprintf("paths flatten to the same name %q", c.Name))
	}
}

// validateEnvironment checks that environment is a list of mappings, each
// naming one variable. A TOML table here would otherwise project nothing.
func (v *Validator) validateEnvironment(vr *ValidationResult, tree Tree) {
	raw, ok := tree[SectionEnvironment]
	if !ok || raw == nil {
		return
	}
	entries, ok := asSequence(raw)
	if !ok {
		addError(vr, SectionEnvironment, "must be a list of single-entry mappings")
		return
	}
	for i, item := range entries {
		field := fmt.Sprintf("%s[%d]", SectionEnvironment, i)
		entry, ok := item.(map[string]any)
		if !ok {
			addError(vr, field, "must be a mapping of one variable name to its value")
			continue
		}
		if len(entry) != 1 {
			addWarning(vr, field, fmt.Sprintf("entry names %d variables; expected one", len(entry)))
		}
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
