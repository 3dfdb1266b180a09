package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonioLangiu/Ceedling/internal/buildinfo"
	"github.com/AntonioLangiu/Ceedling/internal/config"
)

var versionJSON bool

// versionReport is the build information plus what the binary embeds: the
// default layers merged under every project and the init templates.
type versionReport struct {
	buildinfo.Info
	DefaultLayers []string `json:"default_layers"`
	Templates     []string `json:"templates"`
}

func newVersionReport() (versionReport, error) {
	r := versionReport{Info: buildinfo.GetInfo()}

	cat, err := config.NewCatalog()
	if err != nil {
		return r, err
	}
	r.DefaultLayers = append(r.DefaultLayers, cat.Base().Name)
	for _, l := range cat.Layers() {
		r.DefaultLayers = append(r.DefaultLayers, l.Name)
	}

	r.Templates, err = config.ListTemplates()
	return r, err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, build and embedded defaults information",
	Long: `Display the version, git commit, build date and Go version of this binary,
followed by the built-in default layers applied under every project file and
the project templates available to "init".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := newVersionReport()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if versionJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintln(out, report.Info.String())
		fmt.Fprintf(out, "Default layers: %s\n", strings.Join(report.DefaultLayers, ", "))
		fmt.Fprintf(out, "Templates:      %s\n", strings.Join(report.Templates, ", "))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output version info as JSON")
	rootCmd.AddCommand(versionCmd)
}
