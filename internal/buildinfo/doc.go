// Package buildinfo reports the ceedling-config version. Release builds set
// the variables with -ldflags -X; other builds fall back to the module
// information the Go toolchain embeds.
package buildinfo

// Set at build time via -ldflags -X.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
