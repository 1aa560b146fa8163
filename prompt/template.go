package prompt

import (
	"maps"
	"slices"
	"strings"
)

// Template is a parsed, immutable template. It is safe for
// concurrent use by multiple goroutines.
type Template struct {
	text         string
	variables    []string
	placeholders []placeholder
}

// New parses text and returns its Template. It returns
// ErrInvalidTemplate when text is empty or whitespace only.
func New(text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidTemplate
	}

	phs := scan(text)

	set := make(map[string]struct{}, len(phs))
	for _, ph := range phs {
		set[ph.name] = struct{}{}
	}

	return &Template{
		text:         text,
		variables:    sortedNames(set),
		placeholders: phs,
	}, nil
}

// Text returns the template text as given to New.
func (t *Template) Text() string {
	return t.text
}

// Variables returns the distinct variable names referenced
// by the template, sorted.
func (t *Template) Variables() []string {
	return slices.Clone(t.variables)
}

// Render substitutes every placeholder with the textual
// form of its binding.
//
// Every referenced variable must be present in bindings,
// otherwise a *VariableError wrapping ErrMissingVariable is
// returned for the first missing name in sorted order. Any
// nil value in bindings, referenced or not, yields a
// *VariableError wrapping ErrNullVariableValue. Non-nil
// bindings for names the template does not reference have
// no effect.
func (t *Template) Render(bindings map[string]any) (string, error) {
	for _, name := range t.variables {
		if _, ok := bindings[name]; !ok {
			return "", &VariableError{
				Name: name,
				Err:  ErrMissingVariable,
			}
		}
	}

	values := make(map[string]string, len(t.variables))

	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		s, ok := textOf(bindings[name])
		if !ok {
			return "", &VariableError{
				Name: name,
				Err:  ErrNullVariableValue,
			}
		}

		if _, used := slices.BinarySearch(t.variables, name); used {
			values[name] = s
		}
	}

	var sb strings.Builder

	sb.Grow(len(t.text))

	last := 0

	for _, ph := range t.placeholders {
		sb.WriteString(t.text[last:ph.start])
		sb.WriteString(values[ph.name])
		last = ph.end
	}

	sb.WriteString(t.text[last:])

	return sb.String(), nil
}
