package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// format styles a scalar or key. When a highlight pattern is set and matches
// raw, the text is split on match boundaries: matches take the highlight style
// and the rest the base style. With quote set the text is JSON-quoted; each
// piece is escaped separately so the boundaries found in the raw text survive
// quoting, with the quote characters landing in the first and last pieces.
func (p *pass) format(segments []string, raw string, c Category, quote bool) string {
	base := p.style(c)
	var matches [][]int
	if p.opts.Highlight != nil {
		matches = p.opts.Highlight.FindAllStringIndex(raw, -1)
	}
	if len(matches) == 0 {
		if quote {
			raw = quoteJSON(raw)
		}
		return base(raw)
	}

	path := value.JoinPath(segments)
	hl := p.style(CategoryHighlight)
	delta := matchBump
	if p.isCurrent(path) {
		hl = p.style(CategoryHighlightCurrent)
		delta = currentMatchBump
	}
	p.r.logger.V(1).Info("highlight match", "path", path, "matches", len(matches))
	p.bump(segments, delta)
	if n := len(p.res.Matches); n == 0 || p.res.Matches[n-1] != path {
		p.res.Matches = append(p.res.Matches, path)
	}

	pieces := make([]string, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		pieces = append(pieces, raw[prev:m[0]], raw[m[0]:m[1]])
		prev = m[1]
	}
	pieces = append(pieces, raw[prev:])

	var b strings.Builder
	last := len(pieces) - 1
	for i, piece := range pieces {
		if quote {
			piece = escapeJSON(piece)
			if i == 0 {
				piece = `"` + piece
			}
			if i == last {
				piece += `"`
			}
		}
		if piece == "" {
			continue
		}
		if i%2 == 1 {
			b.WriteString(hl(piece))
		} else {
			b.WriteString(base(piece))
		}
	}
	return b.String()
}

// quoteJSON returns s as a JSON string literal without HTML escaping.
func quoteJSON(s string) string {
	return `"` + escapeJSON(s) + `"`
}

// escapeJSON returns the body of the JSON string literal for s.
func escapeJSON(s string) string {
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// structural serializes a value with no dedicated rendering rule as indented
// JSON. Non-finite numbers serialize as null; values encoding/json rejects
// fall back to their fmt representation.
func structural(v value.Value, indent string) string {
	switch v.Kind() {
	case value.KindNumber:
		if !v.IsFinite() {
			return "null"
		}
		return value.FormatNumber(v.Float())
	case value.KindOpaque:
		x := v.Opaque()
		if x == nil {
			return "null"
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", indent)
		if err := enc.Encode(x); err != nil {
			return fmt.Sprintf("%v", x)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", indent)
		if err := enc.Encode(value.ToAny(v)); err != nil {
			return fmt.Sprintf("%v", value.ToAny(v))
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}
