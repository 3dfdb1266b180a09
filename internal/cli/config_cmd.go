package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AntonioLangiu/Ceedling/internal/config"
)

// Output formats for config show.
const (
	formatText = "text"
	formatJSON = "json"
	formatTOML = "toml"
)

var (
	configShowFormat   string
	configShowSections bool
)

// configCmd groups the configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate and debug the resolved project configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configShowCmd implements "ceedling-config config show [name...]".
var configShowCmd = &cobra.Command{
	Use:   "show [name...]",
	Short: "Show the resolved configuration",
	Long: `Display the flattened configuration names and their values after defaults,
plugins and expressions have been applied. Names may be given to show only
those entries; they are matched case-insensitively.

With --sections the published top-level sections (environment, plugins,
tools) are shown in their nested form instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch configShowFormat {
		case formatText, formatJSON, formatTOML:
		default:
			return fmt.Errorf("unsupported format %q: must be one of %s, %s, %s",
				configShowFormat, formatText, formatJSON, formatTOML)
		}

		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}

		var values map[string]any
		if configShowSections {
			values = sectionsOf(p.published)
		} else {
			values, err = selectNames(p.published, args)
			if err != nil {
				return err
			}
		}
		return writeValues(cmd.OutOrStdout(), p, values)
	},
}

// configValidateCmd implements "ceedling-config config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project configuration and report issues",
	Long: `Resolve the project configuration and report every validation error and
warning. The command fails when any error is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		var failures *config.ValidationFailureSet
		switch {
		case errors.As(err, &failures):
			printValidationResult(cmd, &failures.ValidationResult)
			return fmt.Errorf("configuration has %d error(s)", len(failures.Errors()))
		case err != nil:
			return err
		}
		printValidationResult(cmd, p.configurator.ValidationResult())
		return nil
	},
}

// configMockCmd implements "ceedling-config config mock".
var configMockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Show the mock generator configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		printMockConfig(cmd.OutOrStdout(), p.configurator.MockConfig())
		return nil
	},
}

// configPluginsCmd implements "ceedling-config config plugins".
var configPluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the enabled plugins and what they contribute",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		printPlugins(cmd.OutOrStdout(), p)
		return nil
	},
}

// configEnvCmd implements "ceedling-config config env".
var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the evaluated environment as shell assignments",
	Long: `Print each variable from the environment section as an export statement,
suitable for eval in a POSIX shell.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		env := p.published.Environment()
		for _, name := range p.published.EnvironmentNames() {
			fmt.Fprintf(out, "export %s=%s\n", strings.ToUpper(name), shellQuote(env[name]))
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", formatText, "Output format: text, json or toml")
	configShowCmd.Flags().BoolVar(&configShowSections, "sections", false, "Show the published top-level sections")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configMockCmd)
	configCmd.AddCommand(configPluginsCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// selectNames returns the requested names, or every name when none are
// given.
func selectNames(published *config.Context, names []string) (map[string]any, error) {
	if len(names) == 0 {
		return published.Namespace(), nil
	}
	values := make(map[string]any, len(names))
	for _, name := range names {
		v, ok := published.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown configuration name %q", name)
		}
		values[strings.ToLower(name)] = v
	}
	return values, nil
}

func sectionsOf(published *config.Context) map[string]any {
	values := map[string]any{}
	for _, key := range published.TopKeys() {
		v, _ := published.Top(key)
		values[key] = v
	}
	return values
}

func writeValues(out io.Writer, p *project, values map[string]any) error {
	switch configShowFormat {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	case formatTOML:
		return toml.NewEncoder(out).Encode(values)
	}

	printHeader(out, "Resolved Configuration")
	fmt.Fprintf(out, "Project file: %s\n", p.path)
	fmt.Fprintf(out, "Fingerprint:  %016x\n\n", p.published.Fingerprint())

	names := sortedNames(values)
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	for _, name := range names {
		fmt.Fprintf(out, "  %s = %s\n", styleName.Render(fmt.Sprintf("%-*s", width, name)), fmtValue(values[name]))
	}
	return nil
}

// ---- Lipgloss styles --------------------------------------------------------

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleName      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // bright blue
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

func printHeader(out io.Writer, title string) {
	fmt.Fprintln(out, styleHeader.Render(title))
	fmt.Fprintln(out, styleSeparator.Render(strings.Repeat("=", len(title))))
	fmt.Fprintln(out)
}

// ---- printMockConfig / printPlugins -----------------------------------------

const fieldWidth = 24 // column width for field names

func printField(out io.Writer, name, value string) {
	fmt.Fprintf(out, "  %-*s = %s\n", fieldWidth, name, value)
}

func printMockConfig(out io.Writer, mc config.MockConfig) {
	printHeader(out, "Mock Generator")

	fmt.Fprintln(out, styleSection.Render("[cmock]"))
	printField(out, "mock_prefix", fmtStr(mc.MockPrefix))
	printField(out, "mock_path", fmtStr(mc.MockPath))
	printField(out, "enforce_strict_ordering", fmt.Sprint(mc.EnforceStrictOrdering))
	printField(out, "verbosity", mc.Verbosity.String())
	printField(out, "plugins", fmtSlice(mc.Plugins))
	printField(out, "unity_helper", fmtStr(mc.UnityHelper))
	printField(out, "includes", fmtSlice(mc.Includes))

	var extra []string
	for _, key := range sortedNames(mc.Raw) {
		switch key {
		case "mock_prefix", "mock_path", "enforce_strict_ordering", "verbosity",
			"plugins", "unity_helper", "includes":
			continue
		}
		extra = append(extra, key)
	}
	if len(extra) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleSection.Render("[cmock] passed through"))
		for _, key := range extra {
			printField(out, key, fmtValue(mc.Raw[key]))
		}
	}
}

func printPlugins(out io.Writer, p *project) {
	printHeader(out, "Plugins")

	paths := p.published.Plugins()
	enabled := make([]string, 0, len(paths))
	for _, name := range sortedNames(paths) {
		if dir, ok := paths[name].(string); ok {
			enabled = append(enabled, name)
			printField(out, name, fmtStr(dir))
		}
	}
	if len(enabled) == 0 {
		fmt.Fprintln(out, "  none found")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, styleSection.Render("Task plugins"))
	printList(out, p.configurator.TaskPlugins())
	fmt.Fprintln(out, styleSection.Render("Script plugins"))
	printList(out, p.configurator.ScriptPlugins())
}

func printList(out io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  %s\n", item)
	}
}

// ---- formatting -------------------------------------------------------------

// fmtStr formats a string value for display (quoted).
func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// fmtSlice formats a string slice for display.
func fmtSlice(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmtStr(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// fmtValue formats a configuration value. Mappings are shown with sorted
// keys.
func fmtValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmtStr(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmtValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range sortedNames(x) {
			parts = append(parts, k+" = "+fmtValue(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// shellQuote single-quotes s for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ---- printValidationResult --------------------------------------------------

// printValidationResult writes the formatted validation report to cmd's
// output writer.
func printValidationResult(cmd *cobra.Command, result *config.ValidationResult) {
	out := cmd.OutOrStdout()
	printHeader(out, "Configuration Validation")

	var errs, warns []config.ValidationIssue
	if result != nil {
		errs = result.Errors()
		warns = result.Warnings()
	}

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
