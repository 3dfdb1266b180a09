// Command gen-completions writes shell completion scripts for ceedling-config
// into an output directory for release archives.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AntonioLangiu/Ceedling/internal/cli"
)

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("All completions written to %s/\n", outDir)
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}

	root := cli.NewRootCmd()
	entries := []struct {
		filename string
		generate func(w io.Writer) error
	}{
		{"ceedling-config.bash", func(w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
		{"_ceedling-config", root.GenZshCompletion},
		{"ceedling-config.fish", func(w io.Writer) error { return root.GenFishCompletion(w, true) }},
		{"ceedling-config.ps1", root.GenPowerShellCompletionWithDesc},
	}

	for _, e := range entries {
		path := filepath.Join(outDir, e.filename)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %q: %w", path, err)
		}
		if err := e.generate(f); err != nil {
			f.Close()
			return fmt.Errorf("generating completion for %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %q: %w", path, err)
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}
