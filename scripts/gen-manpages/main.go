// Command gen-manpages writes section 1 man pages for ceedling-config and
// every subcommand using cobra's doc package. The pages carry the version
// stamped into the generator by the release build.
//
// Usage:
//
//	go run ./scripts/gen-manpages [output-dir]
//
// The default output directory is "man/man1".
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/AntonioLangiu/Ceedling/internal/buildinfo"
	"github.com/AntonioLangiu/Ceedling/internal/cli"
)

func main() {
	outDir := "man/man1"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Man pages generated in %s/\n", outDir)
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}

	root := cli.NewRootCmd()
	root.DisableAutoGenTag = true

	header := &doc.GenManHeader{
		Title:   "CEEDLING-CONFIG",
		Section: "1",
		Source:  "ceedling-config " + buildinfo.GetInfo().Version,
		Manual:  "Ceedling Project Configuration",
	}
	if err := doc.GenManTree(root, header, outDir); err != nil {
		return fmt.Errorf("generating man pages: %w", err)
	}
	return nil
}
