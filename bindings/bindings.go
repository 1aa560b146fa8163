package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"
)

var (
	// ErrUnsupportedFormat is returned by LoadFile for files
	// that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New(
		"variables file must be .json, .yaml or .yml",
	)

	// ErrBadAssignment is returned by ParseAssignments for
	// entries that are not NAME=VALUE.
	ErrBadAssignment = errors.New(
		"variable must be NAME=value",
	)
)

// LoadStamps reads workspace status files and merges them
// into a single map. Each line is "KEY VALUE" with the
// first space as delimiter; lines without a space are
// skipped. Later files override earlier ones.
func LoadStamps(infoFiles []string) (map[string]string, error) {
	const errCtx = "loading stamps"

	stamps := make(map[string]string)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, line := range strings.Split(string(content), "\n") {
			key, value, ok := strings.Cut(
				strings.TrimSuffix(line, "\r"), " ",
			)
			if ok {
				stamps[key] = value
			}
		}
	}

	return stamps, nil
}

// LoadFile decodes a JSON or YAML file holding a single
// top-level mapping of variable names to values. The
// format is chosen by file extension.
func LoadFile(path string) (map[string]any, error) {
	const errCtx = "loading variables file"

	var unmarshal func([]byte, any) error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf(
			"%s: %s: %w", errCtx, path, ErrUnsupportedFormat,
		)
	}

	content, err := os.ReadFile(path) //nolint:gosec // paths from CLI flags
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var vars map[string]any

	if err := unmarshal(content, &vars); err != nil {
		return nil, fmt.Errorf(
			"%s: decoding %s: %w", errCtx, path, err,
		)
	}

	if vars == nil {
		vars = make(map[string]any)
	}

	return vars, nil
}

// ParseAssignments turns NAME=VALUE strings into a binding
// set. Each VALUE is expanded against stamps with
// single-brace {KEY} tags; unknown tags are preserved and
// a value with an unterminated tag is kept verbatim.
func ParseAssignments(
	assignments []string,
	stamps map[string]string,
) (map[string]any, error) {
	const errCtx = "parsing assignments"

	tags := FromStamps(stamps)

	vars := make(map[string]any, len(assignments))

	for _, as := range assignments {
		name, value, ok := strings.Cut(as, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf(
				"%s: %w, got %q", errCtx, ErrBadAssignment, as,
			)
		}

		vars[name] = expandStamps(value, tags)
	}

	return vars, nil
}

// ExpandStamps expands single-brace {KEY} tags in value
// against stamps, with the same rules as ParseAssignments.
func ExpandStamps(value string, stamps map[string]string) string {
	return expandStamps(value, FromStamps(stamps))
}

func expandStamps(value string, tags map[string]any) string {
	var sb strings.Builder

	if _, err := fasttemplate.ExecuteStd(
		value, "{", "}", &sb, tags,
	); err != nil {
		return value
	}

	return sb.String()
}

// Merge layers binding sets into a new map. Values from
// later sets override earlier ones; nil sets are skipped.
func Merge(sets ...map[string]any) map[string]any {
	merged := make(map[string]any)

	for _, set := range sets {
		for key, val := range set {
			merged[key] = val
		}
	}

	return merged
}

// FromStamps converts stamps into a binding set.
func FromStamps(stamps map[string]string) map[string]any {
	vars := make(map[string]any, len(stamps))

	for key, val := range stamps {
		vars[key] = val
	}

	return vars
}
