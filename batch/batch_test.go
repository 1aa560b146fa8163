package batch_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/promptfill/batch"
	"github.com/byte4ever/promptfill/prompt"
)

// helper creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o750))
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func TestRun_inline_and_file_templates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "tpl/report.tpl", "{{ who }} reports to {{team}}\n")

	manifest := writeTemp(t, dir, "manifest.yaml", `
variables:
  team: core
templates:
  - name: greeting
    template: "{{greeting}}, {{name}}! {{name}}, meet {{greeting}}."
    variables:
      greeting: Hi
      name: Ann
  - name: report
    file: tpl/report.tpl
    output: out/report.txt
    variables:
      who: Bob
`)

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
		Parallelism:  2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, batch.Result{
		Name:      "greeting",
		Variables: []string{"greeting", "name"},
		Rendered:  "Hi, Ann! Ann, meet Hi.",
	}, results[0])

	outPath := filepath.Join(dir, "out", "report.txt")
	assert.Equal(t, batch.Result{
		Name:      "report",
		Output:    outPath,
		Variables: []string{"team", "who"},
	}, results[1])

	got, err := os.ReadFile(outPath) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "Bob reports to core\n", string(got))
}

func TestRun_shared_file_rendered_concurrently(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "hello.tpl", "hello {{ name }}")

	const entries = 20

	var sb strings.Builder

	sb.WriteString("templates:\n")

	for i := range entries {
		fmt.Fprintf(
			&sb,
			"  - name: e%d\n    file: hello.tpl\n"+
				"    variables:\n      name: n%d\n",
			i, i,
		)
	}

	manifest := writeTemp(t, dir, "manifest.yaml", sb.String())

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
		Parallelism:  8,
	})
	require.NoError(t, err)
	require.Len(t, results, entries)

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("e%d", i), res.Name)
		assert.Equal(t, fmt.Sprintf("hello n%d", i), res.Rendered)
	}
}

func TestRun_variable_precedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := writeTemp(t, dir, "manifest.yaml", `
variables:
  a: manifest
  b: manifest
  c: manifest
templates:
  - name: only
    template: "{{a}} {{b}} {{c}}"
    variables:
      b: entry
      c: entry
`)

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
		Variables:    map[string]any{"c": "override"},
	})
	require.NoError(t, err)
	assert.Equal(t, "manifest entry override", results[0].Rendered)
}

func TestRun_collects_failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := writeTemp(t, dir, "manifest.yaml", `
templates:
  - name: ok
    template: "fine {{x}}"
    variables:
      x: 1
  - name: missing
    template: "Hello {{name}}!"
  - name: nullvalue
    template: "Hello {{name}}!"
    variables:
      name: null
  - name: blank
    template: "   "
  - name: nofile
    file: absent.tpl
`)

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
		Parallelism:  3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 errors")
	require.ErrorIs(t, err, prompt.ErrMissingVariable)

	require.Len(t, results, 5)
	assert.Equal(t, "fine 1", results[0].Rendered)
	assert.Empty(t, results[0].Error)
	assert.Contains(t, results[1].Error, "missing")
	assert.Contains(t, results[2].Error, "null")
	assert.Contains(t, results[3].Error, "blank")
	assert.Contains(t, results[4].Error, "compiling template")
}

func TestRun_duplicate_outputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := writeTemp(t, dir, "manifest.yaml", `
templates:
  - name: first
    template: "one"
    output: out/result.txt
  - name: second
    template: "two"
    output: ./out/../out/result.txt
`)

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
	})
	require.ErrorIs(t, err, batch.ErrInvalidManifest)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.Nil(t, results)

	_, statErr := os.Stat(filepath.Join(dir, "out", "result.txt"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRun_duplicate_absolute_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(dir, "shared.txt")

	manifest := writeTemp(t, dir, "manifest.yaml", fmt.Sprintf(`
templates:
  - name: relative
    template: "one"
    output: shared.txt
  - name: absolute
    template: "two"
    output: %q
`, abs))

	_, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
	})
	require.ErrorIs(t, err, batch.ErrInvalidManifest)
}

func TestRun_null_manifest_variable_fails_entries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := writeTemp(t, dir, "manifest.yaml", `
variables:
  unused: null
templates:
  - name: a
    template: "{{x}}"
    variables:
      x: 1
`)

	results, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: manifest,
	})
	require.ErrorIs(t, err, prompt.ErrNullVariableValue)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "unused")
}

func TestRun_canceled_context(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := writeTemp(t, dir, "manifest.yaml", `
templates:
  - name: a
    template: "{{x}}"
    variables:
      x: 1
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := batch.Run(ctx, batch.Config{
		ManifestPath: manifest,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Rendered)
	assert.NotEmpty(t, results[0].Error)
}

func TestRun_missing_manifest(t *testing.T) {
	t.Parallel()

	_, err := batch.Run(context.Background(), batch.Config{
		ManifestPath: "/nonexistent/manifest.yaml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running batch")
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	results := []batch.Result{
		{Name: "a", Rendered: "hi", Variables: []string{"x"}},
		{Name: "b", Error: "boom"},
	}

	var buf bytes.Buffer

	require.NoError(t, batch.WriteReport(&buf, results))
	assert.Contains(t, buf.String(), "\n  {")

	var decoded []batch.Result

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, results, decoded)
}
