package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonioLangiu/Ceedling/internal/config"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for ceedling-config.

Besides commands and flags, the scripts complete the configuration names
accepted by "config show" from the project in the current directory, and the
template names accepted by "init".

  Bash:
    ceedling-config completion bash > /etc/bash_completion.d/ceedling-config

  Zsh:
    ceedling-config completion zsh > "${fpath[1]}/_ceedling-config"

  Fish:
    ceedling-config completion fish > ~/.config/fish/completions/ceedling-config.fish

  PowerShell:
    ceedling-config completion powershell > ceedling-config.ps1`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// completeConfigNames offers the published names of the current project
// that start with toComplete and were not already given. A project that
// cannot be resolved offers nothing.
func completeConfigNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadProject(ctx)
	if err != nil || p.published == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	given := make(map[string]bool, len(args))
	for _, a := range args {
		given[strings.ToLower(a)] = true
	}
	prefix := strings.ToLower(toComplete)

	var names []string
	for _, name := range p.published.Names() {
		if !given[name] && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeTemplates offers the embedded init templates.
func completeTemplates(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	all, err := config.ListTemplates()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, name := range all {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	configShowCmd.ValidArgsFunction = completeConfigNames
	initCmd.ValidArgsFunction = completeTemplates
	rootCmd.AddCommand(completionCmd)
}
