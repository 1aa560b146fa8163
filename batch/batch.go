package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/byte4ever/promptfill/bindings"
	"github.com/byte4ever/promptfill/prompt"
)

// Config holds the parameters of a batch run.
type Config struct {
	// ManifestPath is the YAML manifest. Relative template
	// files and outputs are resolved against its directory.
	ManifestPath string

	// Parallelism bounds the number of concurrent renders.
	// Values below 1 mean 1.
	Parallelism int

	// Variables override manifest and entry variables.
	Variables map[string]any
}

// Result is the outcome of rendering one manifest entry.
// Rendered is only set when the entry has no output path.
type Result struct {
	Name      string   `json:"name"`
	Output    string   `json:"output,omitempty"`
	Variables []string `json:"variables,omitempty"`
	Rendered  string   `json:"rendered,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Run loads the manifest and renders every entry. It
// returns one Result per entry, in manifest order, even
// when some entries fail; the error then reports the
// number of failures and the first one.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	const errCtx = "running batch"

	data, err := os.ReadFile(cfg.ManifestPath) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	mf, err := LoadManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	baseDir := filepath.Dir(cfg.ManifestPath)

	if err := checkOutputs(mf, baseDir); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	tpls, compileErrs := compile(mf, baseDir)

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	slog.Info(
		"rendering templates",
		"manifest", cfg.ManifestPath,
		"count", len(mf.Templates),
		"parallelism", parallelism,
	)

	results := make([]Result, len(mf.Templates))
	errs := make([]error, len(mf.Templates))

	for i, en := range mf.Templates {
		results[i].Name = en.Name
		errs[i] = compileErrs[i]
	}

	// Worker pool with bounded concurrency. Each worker
	// owns results[idx] and errs[idx].
	var wg sync.WaitGroup

	sem := make(chan struct{}, parallelism)

	for i := range mf.Templates {
		if ctx.Err() != nil {
			for j := i; j < len(mf.Templates); j++ {
				if errs[j] == nil {
					errs[j] = ctx.Err()
				}
			}

			break
		}

		if errs[i] != nil {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			errs[idx] = renderEntry(
				mf, idx, tpls[idx], baseDir,
				cfg.Variables, &results[idx],
			)
		}(i)
	}

	wg.Wait()

	var failed []error

	for i, err := range errs {
		if err == nil {
			continue
		}

		results[i].Error = err.Error()
		failed = append(failed, fmt.Errorf(
			"template %s: %w", results[i].Name, err,
		))

		slog.Warn(
			"template failed",
			"template", results[i].Name,
			"error", err,
		)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf(
			"%s: %d errors, first: %w",
			errCtx, len(failed), failed[0],
		)
	}

	return results, nil
}

// checkOutputs rejects manifests where two entries write
// to the same file once resolved against baseDir.
func checkOutputs(mf *Manifest, baseDir string) error {
	owners := make(map[string]string, len(mf.Templates))

	for _, en := range mf.Templates {
		if en.Output == "" {
			continue
		}

		pa := resolve(baseDir, en.Output)

		if owner, ok := owners[pa]; ok {
			return fmt.Errorf(
				"%w: templates %s and %s both write %s",
				ErrInvalidManifest, owner, en.Name, pa,
			)
		}

		owners[pa] = en.Name
	}

	return nil
}

// compile parses every entry's template. Entries naming the
// same file share one compiled template.
func compile(
	mf *Manifest,
	baseDir string,
) ([]*prompt.Template, []error) {
	const errCtx = "compiling template"

	tpls := make([]*prompt.Template, len(mf.Templates))
	errs := make([]error, len(mf.Templates))
	byFile := make(map[string]*prompt.Template)

	for i, en := range mf.Templates {
		if en.File == "" {
			tpl, err := prompt.New(en.Template)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", errCtx, err)
			}

			tpls[i] = tpl

			continue
		}

		pa := resolve(baseDir, en.File)

		if tpl, ok := byFile[pa]; ok {
			tpls[i] = tpl

			continue
		}

		content, err := os.ReadFile(pa) //nolint:gosec // paths from manifest
		if err != nil {
			errs[i] = fmt.Errorf("%s: %w", errCtx, err)

			continue
		}

		tpl, err := prompt.FromInput(prompt.Text(content))
		if err != nil {
			errs[i] = fmt.Errorf("%s: %s: %w", errCtx, pa, err)

			continue
		}

		byFile[pa] = tpl
		tpls[i] = tpl
	}

	return tpls, errs
}

// renderEntry renders entry idx of mf into res and writes
// the output file when the entry has one.
func renderEntry(
	mf *Manifest,
	idx int,
	tpl *prompt.Template,
	baseDir string,
	overrides map[string]any,
	res *Result,
) error {
	const errCtx = "rendering"

	en := mf.Templates[idx]

	res.Variables = tpl.Variables()

	out, err := tpl.Render(
		bindings.Merge(mf.Variables, en.Variables, overrides),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if en.Output == "" {
		res.Rendered = out

		return nil
	}

	pa := resolve(baseDir, en.Output)

	//nolint:gosec // output directories are meant to be shared
	if err := os.MkdirAll(filepath.Dir(pa), 0o755); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	//nolint:gosec // paths from manifest
	if err := os.WriteFile(pa, []byte(out), 0o666); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Output = pa

	return nil
}

func resolve(baseDir, pa string) string {
	if filepath.IsAbs(pa) {
		return filepath.Clean(pa)
	}

	return filepath.Join(baseDir, pa)
}
