package render

import "strings"

// Indenter prefixes every line of text with unit. Implementations must not add
// or remove lines.
type Indenter func(text, unit string) string

// Indent prefixes every newline-separated line of text with unit.
func Indent(text, unit string) string {
	if unit == "" {
		return text
	}
	return unit + strings.ReplaceAll(text, "\n", "\n"+unit)
}
