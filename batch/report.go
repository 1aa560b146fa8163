package batch

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// WriteReport encodes results as an indented JSON array.
func WriteReport(w io.Writer, results []Result) error {
	const errCtx = "writing report"

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
