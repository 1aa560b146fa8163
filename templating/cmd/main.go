// Binary promptfill renders a {{ name }} template using
// stamp info files, variable files and explicit variable
// assignments.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/promptfill/templating"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return ""
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

func main() {
	var (
		stampInfoFile arrayFlags
		variablesFile arrayFlags
		variable      arrayFlags
		imports       arrayFlags
		output        string
		tpl           string
		executable    bool
	)

	flag.Var(
		&stampInfoFile,
		"stamp_info_file",
		"Stamp info file path (repeatable)",
	)

	flag.Var(
		&variablesFile,
		"variables_file",
		"JSON or YAML variables file path (repeatable)",
	)

	flag.Var(
		&variable,
		"variable",
		"Variable in NAME=VALUE format (repeatable)",
	)

	flag.Var(
		&imports,
		"imports",
		"Import in NAME=filename format, bound as imports.NAME (repeatable)",
	)

	flag.StringVar(
		&output, "output", "",
		"Output file path (stdout if empty)",
	)

	flag.StringVar(
		&tpl, "template", "",
		"Input template file path (stdin if empty)",
	)

	flag.BoolVar(
		&executable, "executable", false,
		"Set executable bit on output file",
	)

	flag.Usage = usage

	flag.Parse()

	en := templating.Engine{
		StampInfoFiles: stampInfoFile,
		VariableFiles:  variablesFile,
	}

	if err := en.Expand(
		tpl, output, variable, imports, executable,
	); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()

	fmt.Fprintf(out, "Usage: %s [flags]\n\n", os.Args[0])
	fmt.Fprint(out, `Renders a {{ name }} template. Rendering is strict:
every placeholder must have a binding, and any null value
among the bindings is an error, even one the template does
not reference. On failure nothing is written.

Flags:
`)
	flag.PrintDefaults()
}
