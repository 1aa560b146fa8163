package templating

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/byte4ever/promptfill/bindings"
	"github.com/byte4ever/promptfill/prompt"
)

// ErrBadImport is returned for imports that are not
// NAME=filename.
var ErrBadImport = errors.New("import must be NAME=filename")

// Engine expands template files using stamp info files,
// variable files and explicit variables.
type Engine struct {
	StampInfoFiles []string
	VariableFiles  []string
}

// Expand reads a template, renders it, and writes the
// result. If tplPath is empty it reads from stdin; if
// outPath is empty it writes to stdout. If executable is
// true the output file receives mode 0777 instead of 0666.
//
// Bindings are layered in this order, later sources
// overriding earlier ones:
//  1. Stamps from StampInfoFiles.
//  2. Variable files, in order.
//  3. Each variable NAME=VALUE, with VALUE expanded
//     against stamps using single-brace tags, stored as
//     both "NAME" and "variables.NAME".
//  4. Each import NAME=filename, in order: the file is
//     rendered against the bindings assembled so far,
//     expanded against stamps using single-brace tags, and
//     stored as "imports.NAME".
func (en *Engine) Expand(
	tplPath string,
	outPath string,
	vars []string,
	imports []string,
	executable bool,
) error {
	const errCtx = "expanding template"

	bnd, err := en.Bindings(vars, imports)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tplContent, err := en.readTemplate(tplPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := prompt.New(string(tplContent))
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	result, err := tpl.Render(bnd)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := en.writeOutput(outPath, result, executable); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"rendered template",
		"template", tplPath,
		"output", outPath,
		"variables", len(tpl.Variables()),
	)

	return nil
}

// Bindings assembles the binding set for vars and imports
// from the engine's stamp and variable files.
func (en *Engine) Bindings(
	vars []string,
	imports []string,
) (map[string]any, error) {
	const errCtx = "collecting bindings"

	stamps, err := bindings.LoadStamps(en.StampInfoFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	sets := []map[string]any{bindings.FromStamps(stamps)}

	for _, vf := range en.VariableFiles {
		set, err := bindings.LoadFile(vf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		sets = append(sets, set)
	}

	explicit, err := bindings.ParseAssignments(vars, stamps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	prefixed := make(map[string]any, 2*len(explicit))
	for name, val := range explicit {
		prefixed[name] = val
		prefixed["variables."+name] = val
	}

	bnd := bindings.Merge(append(sets, prefixed)...)

	if err := en.resolveImports(imports, stamps, bnd); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return bnd, nil
}

// resolveImports renders each import file against bnd,
// expands the result against stamps with single-brace
// tags, and stores it in bnd as "imports.NAME". A later
// import may reference an earlier one.
func (en *Engine) resolveImports(
	imports []string,
	stamps map[string]string,
	bnd map[string]any,
) error {
	const errCtx = "resolving imports"

	for _, im := range imports {
		name, file, ok := strings.Cut(im, "=")
		if !ok || name == "" || file == "" {
			return fmt.Errorf(
				"%s: %w, got %q", errCtx, ErrBadImport, im,
			)
		}

		content, err := os.ReadFile(file) //nolint:gosec // paths from CLI flags
		if err != nil {
			return fmt.Errorf(
				"%s: reading %s: %w", errCtx, file, err,
			)
		}

		tpl, err := prompt.New(string(content))
		if err != nil {
			return fmt.Errorf("%s: %s: %w", errCtx, name, err)
		}

		val, err := tpl.Render(bnd)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", errCtx, name, err)
		}

		bnd["imports."+name] = bindings.ExpandStamps(val, stamps)
	}

	return nil
}

// readTemplate reads the template text from tplPath, or
// from stdin when tplPath is empty.
func (en *Engine) readTemplate(tplPath string) ([]byte, error) {
	const errCtx = "reading template"

	var (
		content []byte
		err     error
	)

	if tplPath == "" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(tplPath) //nolint:gosec // paths from CLI flags
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return content, nil
}

// writeOutput writes result to outPath, or to stdout when
// outPath is empty. New files get mode 0666, or 0777 when
// executable is set, before the umask.
func (en *Engine) writeOutput(
	outPath string,
	result string,
	executable bool,
) error {
	const errCtx = "writing output"

	if outPath == "" {
		if _, err := io.WriteString(os.Stdout, result); err != nil {
			return fmt.Errorf("%s: stdout: %w", errCtx, err)
		}

		return nil
	}

	var perm os.FileMode = 0o666
	if executable {
		perm = 0o777
	}

	//nolint:gosec // paths from CLI flags
	if err := os.WriteFile(outPath, []byte(result), perm); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
