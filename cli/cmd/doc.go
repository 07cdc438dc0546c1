// Package cmd implements the clac subcommands: eval, repl, fmt and init.
//
// Every command that evaluates code builds its interpreter from the
// [Environment] stored in its context, so configured builtins and prelude
// files are available everywhere.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
