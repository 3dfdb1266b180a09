// Package cli implements the ceedling-config command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AntonioLangiu/Ceedling/internal/config"
	"github.com/AntonioLangiu/Ceedling/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose   bool
	flagQuiet     bool
	flagProject   string
	flagDir       string
	flagNoColor   bool
	flagVerbosity = config.VerbosityNormal
)

// rootCmd is the base command for ceedling-config.
var rootCmd = &cobra.Command{
	Use:   "ceedling-config",
	Short: "Resolve and inspect C unit test project configuration",
	Long: `ceedling-config loads a project file, layers the built-in defaults and
plugin configuration around it, evaluates embedded expressions, validates the
result and publishes the flattened configuration other build steps consume.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRun,
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()
	// Environment fallbacks for flags not given on the command line.
	if !flags.Changed("verbose") && os.Getenv("CEEDLING_VERBOSE") != "" {
		flagVerbose = true
	}
	if !flags.Changed("quiet") && os.Getenv("CEEDLING_QUIET") != "" {
		flagQuiet = true
	}
	if !flags.Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("CEEDLING_NO_COLOR") != "") {
		flagNoColor = true
	}
	if !flags.Changed("verbosity") {
		if v := os.Getenv("CEEDLING_VERBOSITY"); v != "" {
			if err := flagVerbosity.Set(v); err != nil {
				return fmt.Errorf("CEEDLING_VERBOSITY: %w", err)
			}
		}
	}

	logging.Setup(logLevel(flags.Changed("verbosity") || os.Getenv("CEEDLING_VERBOSITY") != ""),
		os.Getenv("CEEDLING_LOG_FORMAT") == "json")

	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if flagDir != "" {
		if err := os.Chdir(flagDir); err != nil {
			return fmt.Errorf("changing directory to %s: %w", flagDir, err)
		}
	}
	return nil
}

// logLevel picks the log level. --verbose and --quiet win over an explicit
// verbosity.
func logLevel(verbositySet bool) log.Level {
	if !flagVerbose && !flagQuiet && verbositySet {
		return logging.LevelForVerbosity(int(flagVerbosity))
	}
	return logging.LevelFor(flagVerbose, flagQuiet)
}

func init() {
	registerPersistentFlags(rootCmd)
}

func registerPersistentFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: CEEDLING_VERBOSE)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: CEEDLING_QUIET)")
	pf.StringVarP(&flagProject, "project", "p", "", "Path to the project file (env: "+projectEnvVar+")")
	pf.StringVar(&flagDir, "dir", "", "Override working directory")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: CEEDLING_NO_COLOR, NO_COLOR)")
	pf.Var(&flagVerbosity, "verbosity", "Verbosity: silent, errors, complain, normal, obnoxious, debug or 0-5 (env: CEEDLING_VERBOSITY)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCmd returns a fresh root command carrying the same persistent flags
// and subcommands as the global one, for the completion and man page
// generators.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	registerPersistentFlags(cmd)
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
