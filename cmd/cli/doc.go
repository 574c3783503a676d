// Package cli constructs the manahg command-line interface. It wires the
// Cobra command hierarchy, the Viper configuration loader and the zap logger
// to the repository orchestrator. The root command opens the interactive
// table; the subcommands drive the same orchestrator without a terminal
// interface and print their results as a table, JSON or YAML.
package cli
