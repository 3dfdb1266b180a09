// Package config resolves a C unit test project's configuration.
//
// A project file is decoded into a Tree of nested mappings, sequences and
// scalars. Resolve then layers the built-in defaults and plugin
// contributions around it, fills the mock generator and tool sections,
// evaluates #{...} expressions in environment and path entries, validates
// the result and publishes it as a Context: a flat namespace where each leaf
// is named by its lower-cased path joined with underscores, e.g.
// project_build_root or tools_test_compiler_executable.
//
// The Configurator is the single writer of the live namespace. Published
// contexts and snapshots are copies, so readers never observe a later
// ReplaceFlattened or Restore.
package config
