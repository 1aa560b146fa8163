package prompt

import (
	"maps"
	"regexp"
	"slices"
)

// placeholderRe matches "{{", optional whitespace, the
// name, optional whitespace and "}}". The name is matched
// non-greedily so the first "}}" closes the placeholder,
// and never contains a line terminator (\n, \r, U+0085,
// U+2028, U+2029). Whitespace includes the vertical tab.
var placeholderRe = regexp.MustCompile(
	`\{\{[\t\n\x0B\f\r ]*([^\n\r\x{85}\x{2028}\x{2029}]+?)[\t\n\x0B\f\r ]*\}\}`,
)

// placeholder is one occurrence of {{ name }} in the text.
// start and end are byte offsets of the whole match.
type placeholder struct {
	start int
	end   int
	name  string
}

// scan returns all non-overlapping placeholders of text in
// left-to-right order.
func scan(text string) []placeholder {
	matches := placeholderRe.FindAllStringSubmatchIndex(text, -1)

	phs := make([]placeholder, 0, len(matches))

	for _, m := range matches {
		phs = append(phs, placeholder{
			start: m[0],
			end:   m[1],
			name:  text[m[2]:m[3]],
		})
	}

	return phs
}

// ExtractVariables returns the distinct variable names
// referenced by placeholders in text. A text without
// placeholders yields an empty set. An unterminated
// "{{name" is literal text.
func ExtractVariables(text string) map[string]struct{} {
	vars := make(map[string]struct{})

	for _, ph := range scan(text) {
		vars[ph.name] = struct{}{}
	}

	return vars
}

func sortedNames(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
