// Package plugin finds enabled plugins on disk and reads the configuration
// fragments they contribute.
//
// A plugin is a directory named after the plugin inside one of the load
// paths:
//
//	<name>/<name>.rake              task plugin
//	<name>/lib/<name>.rb            script plugin
//	<name>/config/*.{yml,yaml,toml} configuration merged over the project
//	<name>/config/defaults.*        defaults merged underneath the project
//
// The first load path holding a directory for the plugin wins.
package plugin
