package batch

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// ErrInvalidManifest is returned when a manifest decodes
// but describes an unusable set of templates.
var ErrInvalidManifest = errors.New("invalid manifest")

// Entry is one template of a manifest. Exactly one of
// Template (inline text) and File must be set.
type Entry struct {
	Name      string         `yaml:"name"`
	Template  string         `yaml:"template"`
	File      string         `yaml:"file"`
	Output    string         `yaml:"output"`
	Variables map[string]any `yaml:"variables"`
}

// Manifest describes a batch of templates. Variables are
// shared by all entries; entry variables override them.
type Manifest struct {
	Variables map[string]any `yaml:"variables"`
	Templates []Entry        `yaml:"templates"`
}

// LoadManifest decodes and validates a YAML manifest.
// Unknown fields are rejected.
func LoadManifest(data []byte) (*Manifest, error) {
	const errCtx = "loading manifest"

	var mf Manifest

	if err := yaml.UnmarshalWithOptions(
		data, &mf, yaml.DisallowUnknownField(),
	); err != nil {
		return nil, fmt.Errorf(
			"%s: decoding yaml: %w", errCtx, err,
		)
	}

	if err := mf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &mf, nil
}

func (mf *Manifest) validate() error {
	if len(mf.Templates) == 0 {
		return fmt.Errorf("%w: no templates", ErrInvalidManifest)
	}

	seen := make(map[string]struct{}, len(mf.Templates))

	for i, en := range mf.Templates {
		if en.Name == "" {
			return fmt.Errorf(
				"%w: template #%d has no name",
				ErrInvalidManifest, i+1,
			)
		}

		if _, dup := seen[en.Name]; dup {
			return fmt.Errorf(
				"%w: duplicate template name %q",
				ErrInvalidManifest, en.Name,
			)
		}

		seen[en.Name] = struct{}{}

		if (en.Template == "") == (en.File == "") {
			return fmt.Errorf(
				"%w: template %q must set exactly one of"+
					" template or file",
				ErrInvalidManifest, en.Name,
			)
		}
	}

	return nil
}
