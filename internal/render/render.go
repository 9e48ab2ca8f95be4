// Package render turns a value tree into styled, line-oriented text together
// with the indexes an interactive viewer needs: row to path, path to row, and
// a per-path priority score.
//
// A render is a single pre-order traversal. Each visited node is recorded on
// the row that is current when the traversal enters it, so a container maps
// to its opening line and each child to the line holding its key or first
// token. Containers close on the line of their last rendered child.
package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jvx/pkg/value"
)

const (
	// focusRadius is the farthest row distance that still receives a focus bump.
	focusRadius = 10
	// focusPeak is the bump given to the focused row itself.
	focusPeak = 15
	// matchBump and currentMatchBump reward highlight matches.
	matchBump        = 10
	currentMatchBump = 20

	ellipsis       = "…"
	skippedMarker  = "‾"
	lastChildSpace = "  "
)

// Result is the output of a render.
type Result struct {
	Text       string
	RowToPath  map[int]string
	PathToRow  map[string]int
	Priorities Priorities
	// Matches lists the paths whose text matched the highlight pattern, in
	// render order.
	Matches []string
}

// LineCount returns the number of lines in Text.
func (r Result) LineCount() int {
	if r.Text == "" {
		return 0
	}
	return strings.Count(r.Text, "\n") + 1
}

// Renderer renders values with a fixed style provider. It holds no per-call
// state and is safe for concurrent use.
type Renderer struct {
	styles   Styles
	indenter Indenter
	logger   logr.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithIndenter replaces the default line indenter.
func WithIndenter(fn Indenter) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.indenter = fn
		}
	}
}

// WithLogger sets the logger used for V(1) tracing of matches and priority
// bumps.
func WithLogger(lgr logr.Logger) Option {
	return func(r *Renderer) {
		r.logger = lgr
	}
}

// New creates a Renderer. A nil styles renders plain text.
func New(styles Styles, opts ...Option) *Renderer {
	if styles == nil {
		styles = PlainStyles{}
	}
	r := &Renderer{
		styles:   styles,
		indenter: Indent,
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders v with styles and default collaborators.
func Render(v value.Value, opts Options, styles Styles) Result {
	return New(styles).Render(v, opts)
}

// Render renders v. Identical inputs always produce identical results.
func (r *Renderer) Render(v value.Value, opts Options) Result {
	p := &pass{
		r:    r,
		opts: opts,
		res: Result{
			RowToPath:  map[int]string{},
			PathToRow:  map[string]int{},
			Priorities: Priorities{},
		},
	}
	p.res.Text = p.node(v, nil)
	r.logger.V(1).Info("rendered", "rows", p.row+1, "paths", len(p.res.PathToRow), "matches", len(p.res.Matches))
	return p.res
}

// pass is the traversal context of one render.
type pass struct {
	r    *Renderer
	opts Options
	row  int
	res  Result
}

func (p *pass) style(c Category) StyleFunc {
	if fn := p.r.styles.Style(c); fn != nil {
		return fn
	}
	return identity
}

func (p *pass) eol() string {
	p.row++
	return "\n"
}

func (p *pass) isCurrent(path string) bool {
	return p.opts.CurrentPath != nil && *p.opts.CurrentPath == path
}

func (p *pass) bump(segments []string, delta int) {
	next := p.res.Priorities.Bump(segments, delta)
	p.r.logger.V(1).Info("priority bump", "path", value.JoinPath(segments), "delta", delta, "priority", next)
}

func (p *pass) node(v value.Value, segments []string) string {
	if v.IsUndefined() {
		return ""
	}
	path := value.JoinPath(segments)
	p.res.RowToPath[p.row] = path
	p.res.PathToRow[path] = p.row
	if _, ok := p.res.Priorities[path]; !ok {
		p.res.Priorities[path] = 0
	}

	if p.opts.Focus != nil {
		dist := p.row - *p.opts.Focus
		if dist < 0 {
			dist = -dist
		}
		if dist <= focusRadius {
			p.bump(segments, focusPeak-dist)
		}
	}

	switch v.Kind() {
	case value.KindNull:
		return p.format(segments, "null", CategoryNull, false)
	case value.KindNumber:
		if v.IsFinite() {
			return p.format(segments, value.FormatNumber(v.Float()), CategoryNumber, false)
		}
	case value.KindLossless:
		return p.format(segments, v.Text(), CategoryNumber, false)
	case value.KindBool:
		text := "false"
		if v.Boolean() {
			text = "true"
		}
		return p.format(segments, text, CategoryBoolean, false)
	case value.KindString:
		return p.format(segments, v.Text(), CategoryString, true)
	case value.KindArray:
		return p.array(v, segments)
	case value.KindObject:
		return p.object(v, segments)
	case value.KindUndefined, value.KindOpaque:
	}
	return p.fallback(v)
}

// child is one renderable entry of a container.
type child struct {
	segments []string
	render   func() string
}

func (p *pass) array(v value.Value, segments []string) string {
	items := v.Items()
	children := make([]child, len(items))
	for i, item := range items {
		if item.IsUndefined() {
			item = value.Null()
		}
		segs := appendSegment(segments, value.IndexSegment(i))
		children[i] = child{
			segments: segs,
			render:   func() string { return p.node(item, segs) },
		}
	}
	return p.container(segments, "[", "]", children)
}

func (p *pass) object(v value.Value, segments []string) string {
	children := make([]child, 0, v.Len())
	for _, m := range v.Members() {
		if m.Value.IsUndefined() {
			continue
		}
		segs := appendSegment(segments, value.KeySegment(m.Key))
		children = append(children, child{
			segments: segs,
			render: func() string {
				key := p.format(segs, m.Key, CategoryKey, true)
				return key + p.style(CategoryColon)(":") + " " + p.node(m.Value, segs)
			},
		})
	}
	return p.container(segments, "{", "}", children)
}

func (p *pass) container(segments []string, openBracket, closeBracket string, children []child) string {
	path := value.JoinPath(segments)
	bracket := p.style(CategoryBracket)

	var b strings.Builder
	b.WriteString(bracket(openBracket))
	if len(children) == 0 {
		return b.String() + bracket(closeBracket)
	}
	if p.opts.Expanded != nil && !p.opts.Expanded.Has(path) {
		b.WriteString(ellipsis)
		return b.String() + bracket(closeBracket)
	}

	b.WriteString(p.eol())
	unit := p.r.styles.Indent()
	comma := p.style(CategoryComma)
	skipped := false
	for i, c := range children {
		if p.opts.Hidden.Has(value.JoinPath(c.segments)) {
			skipped = true
			continue
		}
		text := p.r.indenter(c.render(), unit)
		if skipped {
			text = markSkipped(text)
			skipped = false
		}
		b.WriteString(text)
		if i < len(children)-1 {
			b.WriteString(comma(","))
			b.WriteString(p.eol())
		} else {
			b.WriteString(lastChildSpace)
		}
	}
	if skipped {
		closeBracket = markSkipped(closeBracket)
	}
	return b.String() + bracket(closeBracket)
}

// fallback serializes values the renderer has no rule for. Line breaks in the
// serialized text advance the row counter so rows stay aligned with lines.
func (p *pass) fallback(v value.Value) string {
	text := structural(v, p.r.styles.Indent())
	p.row += strings.Count(text, "\n")
	return text
}

// markSkipped replaces the leading whitespace of text with the same number of
// overline characters, at least one, to flag hidden lines just above it.
func markSkipped(text string) string {
	rest := strings.TrimLeftFunc(text, unicode.IsSpace)
	n := utf8.RuneCountInString(text[:len(text)-len(rest)])
	if n < 1 {
		n = 1
	}
	return strings.Repeat(skippedMarker, n) + rest
}

// appendSegment returns a fresh slice so sibling closures never share a
// backing array.
func appendSegment(segments []string, seg string) []string {
	out := make([]string, len(segments)+1)
	copy(out, segments)
	out[len(segments)] = seg
	return out
}
