// Package main provides the batch CLI that renders every
// template listed in a YAML manifest and optionally writes
// a JSON report of the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/byte4ever/promptfill/batch"
	"github.com/byte4ever/promptfill/bindings"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return ""
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

func run() error {
	const errCtx = "batch"

	var (
		manifest    string
		report      string
		parallelism int
		variable    arrayFlags
	)

	flag.StringVar(
		&manifest, "manifest", "",
		"YAML manifest listing the templates to render",
	)

	flag.StringVar(
		&report, "report", "",
		"JSON report path (\"-\" for stdout)",
	)

	flag.IntVar(
		&parallelism, "parallelism", 4,
		"maximum number of concurrent renders",
	)

	flag.Var(
		&variable, "variable",
		"override variable in NAME=VALUE format (repeatable)",
	)

	flag.Usage = usage

	flag.Parse()

	if manifest == "" {
		return fmt.Errorf("%s: --manifest is required", errCtx)
	}

	overrides, err := bindings.ParseAssignments(variable, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	results, runErr := batch.Run(ctx, batch.Config{
		ManifestPath: manifest,
		Parallelism:  parallelism,
		Variables:    overrides,
	})

	if report != "" && results != nil {
		if err := writeReport(report, results); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s: %w", errCtx, runErr)
	}

	slog.Info("batch complete", "templates", len(results))

	return nil
}

func writeReport(pa string, results []batch.Result) error {
	var out io.Writer = os.Stdout

	if pa != "-" {
		fi, err := os.Create(pa) //nolint:gosec // path from CLI flag
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}

		defer fi.Close() //nolint:errcheck // best-effort close

		out = fi
	}

	return batch.WriteReport(out, results)
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()

	fmt.Fprintf(out, "Usage: %s --manifest FILE [flags]\n\n", os.Args[0])
	fmt.Fprint(out, `Renders every template of a manifest. Rendering is
strict: a missing variable or any null binding fails the
entry, and entries may not share an output path.

Flags:
`)
	flag.PrintDefaults()
}
