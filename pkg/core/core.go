// Package core is the embedding API of jvx: it loads data, evaluates
// expressions against it and renders it with folding, hiding, highlighting
// and focus priorities.
package core

import (
	"fmt"
	"io"
	"regexp"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jvx/internal/cel"
	"github.com/oakwood-commons/jvx/internal/limiter"
	"github.com/oakwood-commons/jvx/internal/render"
	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/pkg/loader"
	"github.com/oakwood-commons/jvx/pkg/value"
)

type (
	// Result is the output of a render: text, row and path indexes, and
	// per-path priorities.
	Result = render.Result
	// Options controls a single render.
	Options = render.Options
	// PathSet is a set of paths.
	PathSet = render.PathSet
	// Styles supplies the decoration of each output category.
	Styles = render.Styles
	// Category names a kind of output fragment.
	Category = render.Category
	// StyleFunc decorates a fragment.
	StyleFunc = render.StyleFunc
	// Indenter indents the text of a child by one unit.
	Indenter = render.Indenter
)

// Evaluator evaluates expressions against a root value.
type Evaluator interface {
	Evaluate(expr string, root value.Value) (value.Value, error)
}

// Engine bundles an evaluator and a renderer behind one API.
type Engine struct {
	Evaluator Evaluator
	Styles    Styles
	Indenter  Indenter
	Logger    logr.Logger

	renderer *render.Renderer
}

// Option configures the Engine.
type Option func(*Engine) error

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) error {
		c.Evaluator = e
		return nil
	}
}

// WithStyles sets the style provider. Nil renders plain text.
func WithStyles(s Styles) Option {
	return func(c *Engine) error {
		c.Styles = s
		return nil
	}
}

// WithTheme styles output with a theme from the built-in configuration.
func WithTheme(name, indent string) Option {
	return func(c *Engine) error {
		cfg, err := theme.EmbeddedDefaultConfig()
		if err != nil {
			return err
		}
		th, ok := cfg.Theme(name)
		if !ok {
			return fmt.Errorf("unknown theme %q (available: %v)", name, cfg.ThemeNames())
		}
		c.Styles = theme.NewStyles(th, indent)
		return nil
	}
}

// WithIndenter replaces the default indenter.
func WithIndenter(fn Indenter) Option {
	return func(c *Engine) error {
		c.Indenter = fn
		return nil
	}
}

// WithLogger sets the logger used for render tracing.
func WithLogger(lgr logr.Logger) Option {
	return func(c *Engine) error {
		c.Logger = lgr
		return nil
	}
}

// New creates an Engine with a CEL evaluator and plain styles unless options
// say otherwise.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Logger: logr.Discard()}
	for _, opt := range opts {
		if err := opt(engine); err != nil {
			return nil, err
		}
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	if engine.Styles == nil {
		engine.Styles = render.PlainStyles{}
	}
	if engine.Logger.GetSink() == nil {
		engine.Logger = logr.Discard()
	}
	engine.renderer = render.New(engine.Styles,
		render.WithIndenter(engine.Indenter),
		render.WithLogger(engine.Logger),
	)
	return engine, nil
}

// LoadRoot parses input into a single root value; multi-document inputs
// become an array.
func LoadRoot(input string) (value.Value, error) {
	return loader.LoadRoot(input)
}

// LoadRootBytes parses input bytes into a single root value.
func LoadRootBytes(data []byte) (value.Value, error) {
	return loader.LoadRootBytes(data)
}

// LoadReader reads r to the end and parses it into a single root value.
func LoadReader(r io.Reader) (value.Value, error) {
	return loader.LoadReader(r)
}

// LoadFile reads a file and parses it into a single root value.
func LoadFile(path string) (value.Value, error) {
	return loader.LoadFile(path)
}

// LoadObject converts an already parsed object into a value. Strings and
// byte slices are parsed with format detection.
func LoadObject(x any) (value.Value, error) {
	return loader.LoadObject(x)
}

// NewPathSet returns a set holding paths.
func NewPathSet(paths ...string) PathSet {
	return render.NewPathSet(paths...)
}

// ExpandToDepth returns the expanded set opening every container shallower
// than depth; negative depths return nil, which expands everything.
func ExpandToDepth(v value.Value, depth int) PathSet {
	return render.ExpandToDepth(v, depth)
}

// Evaluate runs the evaluator against root.
func (e *Engine) Evaluate(expr string, root value.Value) (value.Value, error) {
	if e == nil || e.Evaluator == nil {
		return value.Value{}, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Evaluate(expr, root)
}

// Render renders v.
func (e *Engine) Render(v value.Value, opts Options) Result {
	if e == nil || e.renderer == nil {
		return render.Render(v, opts, nil)
	}
	return e.renderer.Render(v, opts)
}

// ExpandAll is the View.ExpandDepth that opens every container.
const ExpandAll = -1

// View describes a render in user terms: paths as typed by a user and the
// highlight as a pattern string.
type View struct {
	// Expression selects the value to render; empty renders the root.
	Expression string
	// ExpandDepth opens containers shallower than this depth. The zero value
	// opens nothing, so a zero View renders the root collapsed; pass
	// ExpandAll (or any negative depth) to open everything. Expand adds
	// individual paths on top.
	ExpandDepth int
	Expand      []string
	Hide        []string
	Highlight   string
	Current     string
	// Focus is the focus row. When nil, FocusPath names the focused path
	// instead; a path that is not rendered falls back to its nearest
	// rendered ancestor.
	Focus     *int
	FocusPath string
	// Limit, Offset and Tail trim the records of a top-level array or object
	// after the expression is applied. Tail excludes Limit and ignores Offset.
	Limit  int
	Offset int
	Tail   int
}

// Records returns the record window of the view.
func (vw View) Records() limiter.Config {
	return limiter.Config{Limit: vw.Limit, Offset: vw.Offset, Tail: vw.Tail}
}

// Options converts the view into render options for v.
func (vw View) Options(v value.Value) (Options, error) {
	opts := Options{Focus: vw.Focus}
	opts.Expanded = render.ExpandToDepth(v, vw.ExpandDepth)
	if opts.Expanded != nil {
		for _, p := range vw.Expand {
			opts.Expanded.Add(value.NormalizePath(p))
		}
	}
	if len(vw.Hide) > 0 {
		opts.Hidden = render.NewPathSet()
		for _, p := range vw.Hide {
			opts.Hidden.Add(value.NormalizePath(p))
		}
	}
	if vw.Highlight != "" {
		re, err := regexp.Compile(vw.Highlight)
		if err != nil {
			return Options{}, fmt.Errorf("invalid highlight pattern: %w", err)
		}
		opts.Highlight = re
	}
	if vw.Current != "" {
		current := value.NormalizePath(vw.Current)
		opts.CurrentPath = &current
	}
	return opts, nil
}

// RenderView evaluates the view's expression against root, trims its records
// and renders the result.
func (e *Engine) RenderView(root value.Value, vw View) (Result, error) {
	records := vw.Records()
	if err := records.Validate(); err != nil {
		return Result{}, err
	}
	v := root
	if vw.Expression != "" {
		var err error
		v, err = e.Evaluate(vw.Expression, root)
		if err != nil {
			return Result{}, err
		}
	}
	v = records.Apply(v)
	opts, err := vw.Options(v)
	if err != nil {
		return Result{}, err
	}
	res := e.Render(v, opts)
	if opts.Focus != nil || vw.FocusPath == "" {
		return res, nil
	}
	row, ok := RowOf(res, value.NormalizePath(vw.FocusPath))
	if !ok {
		return res, nil
	}
	opts.Focus = &row
	return e.Render(v, opts), nil
}

// RowOf returns the row of path in res, or of its nearest rendered ancestor.
func RowOf(res Result, path string) (int, bool) {
	segments := value.ParsePath(path)
	for i := len(segments); i >= 0; i-- {
		if row, ok := res.PathToRow[value.JoinPath(segments[:i])]; ok {
			return row, true
		}
	}
	return 0, false
}
