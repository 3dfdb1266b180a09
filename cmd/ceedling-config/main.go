// Command ceedling-config resolves, validates and inspects the configuration
// of a C unit test project.
package main

import (
	"os"

	"github.com/AntonioLangiu/Ceedling/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
