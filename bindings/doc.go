// Package bindings builds variable binding sets for prompt templates from the
// sources a command line typically has at hand: workspace status ("stamp")
// files with one "KEY VALUE" pair per line, JSON or YAML variable files, and
// NAME=VALUE assignments whose values may reference stamps with single-brace
// {KEY} tags. Merge layers several sets so later sources override earlier
// ones.
package bindings
