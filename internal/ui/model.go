// Package ui is the interactive terminal viewer. Every frame is produced by
// re-rendering the value from the view state held in Model, so folding,
// hiding and searching never mutate the value itself.
package ui

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jvx/internal/render"
	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/internal/viewport"
	"github.com/oakwood-commons/jvx/pkg/value"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	gutterWidth   = 2
)

// Config holds the initial view state and presentation of a Model.
type Config struct {
	Theme  theme.Theme
	Indent string
	// ExpandDepth opens containers shallower than this depth; negative opens
	// everything.
	ExpandDepth int
	Hidden      []string
	Highlight   *regexp.Regexp
	// Focus is the initial focus path. Empty focuses the root.
	Focus   string
	NoColor bool
	Width   int
	Height  int
	Keys    KeyBindings
	Logger  logr.Logger
}

// Model is the bubbletea model of the viewer.
type Model struct {
	root     value.Value
	nodes    map[string]node
	renderer *render.Renderer
	keys     KeyBindings
	log      logr.Logger

	expanded render.PathSet
	hidden   render.PathSet
	pattern  *regexp.Regexp
	// current is the match path shown with the current-highlight style.
	current    string
	hasCurrent bool

	focusPath string
	focusRow  int
	top       int

	width  int
	height int

	res     render.Result
	rows    []int
	matches []string

	searching bool
	input     textinput.Model
	err       string

	statusStyle lipgloss.Style
	focusStyle  lipgloss.Style
	errorStyle  lipgloss.Style
	noColor     bool
}

// New builds a viewer for root.
func New(root value.Value, cfg Config) *Model {
	if cfg.Theme.Name == "" {
		cfg.Theme = theme.Default()
	}
	var styles render.Styles = theme.NewStyles(cfg.Theme, cfg.Indent)
	statusStyle := cfg.Theme.StatusStyle()
	focusStyle := cfg.Theme.FocusStyle()
	errorStyle := cfg.Theme.ErrorStyle()
	if cfg.NoColor {
		styles = render.PlainStyles{Space: cfg.Indent}
		statusStyle = lipgloss.NewStyle().Reverse(true)
		focusStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle().Bold(true)
	}
	lgr := cfg.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	keys := cfg.Keys
	if keys == nil {
		keys = DefaultKeyBindings()
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "regular expression"

	m := &Model{
		root:        root,
		nodes:       indexNodes(root),
		renderer:    render.New(styles, render.WithLogger(lgr)),
		keys:        keys,
		log:         lgr,
		expanded:    expandedSet(root, cfg.ExpandDepth),
		hidden:      render.NewPathSet(),
		pattern:     cfg.Highlight,
		focusPath:   value.NormalizePath(cfg.Focus),
		width:       cfg.Width,
		height:      cfg.Height,
		input:       input,
		statusStyle: statusStyle,
		focusStyle:  focusStyle,
		errorStyle:  errorStyle,
		noColor:     cfg.NoColor,
	}
	for _, p := range cfg.Hidden {
		m.hidden.Add(value.NormalizePath(p))
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	m.refresh()
	if m.pattern != nil && len(m.matches) > 0 {
		m.setCurrent(m.matches[0])
		m.refresh()
	}
	return m
}

// node records what the viewer needs about a rendered path. Paths are joined
// from escaped segments, so they are never split back apart.
type node struct {
	parent   string
	openable bool
}

// indexNodes maps every path of root, spelled the way the renderer spells
// it, to its parent and whether it can be folded.
func indexNodes(root value.Value) map[string]node {
	nodes := make(map[string]node)
	var stack []string
	value.Walk(root, func(path string, depth int, v value.Value) bool {
		stack = append(stack[:depth], path)
		n := node{openable: v.IsContainer() && v.Len() > 0}
		if depth > 0 {
			n.parent = stack[depth-1]
		}
		nodes[path] = n
		return true
	})
	return nodes
}

// expandedSet opens every container shallower than depth. The viewer needs
// an explicit set to toggle, so a negative depth lists every container.
func expandedSet(root value.Value, depth int) render.PathSet {
	if depth < 0 {
		depth = math.MaxInt
	}
	return render.ExpandToDepth(root, depth)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width == m.width && msg.Height == m.height {
			return m, nil
		}
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()
		return m, nil

	case tea.KeyPressMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		action := m.keys.Lookup(msg.String())
		if action == ActionNone {
			return m, nil
		}
		m.log.V(1).Info("key", "key", msg.String(), "action", string(action), "path", m.focusPath)
		return m.apply(action)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.search(m.input.Value())
		return m, nil
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply performs a single action and re-renders.
func (m *Model) apply(action Action) (tea.Model, tea.Cmd) {
	m.err = ""
	//exhaustive:ignore // ActionNone is filtered by the caller
	switch action {
	case ActionQuit:
		return m, tea.Quit
	case ActionDown:
		m.moveBy(1)
	case ActionUp:
		m.moveBy(-1)
	case ActionPageDown:
		m.moveToRow(m.focusRow + m.bodyHeight())
	case ActionPageUp:
		m.moveToRow(m.focusRow - m.bodyHeight())
	case ActionTop:
		m.moveToRow(0)
	case ActionBottom:
		m.moveToRow(math.MaxInt)
	case ActionToggle:
		if m.isOpenable(m.focusPath) {
			m.expanded.Toggle(m.focusPath)
		}
	case ActionExpand:
		if m.isOpenable(m.focusPath) && !m.expanded.Has(m.focusPath) {
			m.expanded.Add(m.focusPath)
		} else {
			m.moveBy(1)
		}
	case ActionCollapse:
		if m.isOpenable(m.focusPath) && m.expanded.Has(m.focusPath) {
			m.expanded.Remove(m.focusPath)
		} else {
			m.focusPath = m.parentOf(m.focusPath)
		}
	case ActionExpandAll:
		m.expanded = expandedSet(m.root, -1)
	case ActionCollapseAll:
		m.expanded = render.NewPathSet("")
	case ActionHide:
		m.hide()
	case ActionUnhideAll:
		m.hidden = render.NewPathSet()
	case ActionSearch:
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case ActionNextMatch:
		m.stepMatch(1)
	case ActionPrevMatch:
		m.stepMatch(-1)
	case ActionClearSearch:
		m.pattern = nil
		m.clearCurrent()
	}
	m.refresh()
	return m, nil
}

// refresh renders the value for the current view state. The focus row is
// only known after layout, so a second pass runs when it moved.
func (m *Model) refresh() {
	m.res = m.render(m.focusRow)
	row := m.resolveFocus()
	if row != m.focusRow {
		m.focusRow = row
		m.res = m.render(row)
	}
	m.rows = m.rows[:0]
	for r := range m.res.RowToPath {
		m.rows = append(m.rows, r)
	}
	sort.Ints(m.rows)
	m.matches = m.res.Matches
	m.scroll()
}

func (m *Model) render(focus int) render.Result {
	opts := render.Options{
		Expanded:  m.expanded,
		Hidden:    m.hidden,
		Highlight: m.pattern,
		Focus:     &focus,
	}
	if m.hasCurrent {
		current := m.current
		opts.CurrentPath = &current
	}
	return m.renderer.Render(m.root, opts)
}

// resolveFocus returns the row of the focus path, walking up to the nearest
// rendered ancestor when the path itself is folded away or hidden.
func (m *Model) resolveFocus() int {
	path := m.focusPath
	for {
		if row, ok := m.res.PathToRow[path]; ok {
			m.focusPath = path
			return row
		}
		if path == "" {
			m.focusPath = ""
			return 0
		}
		path = m.parentOf(path)
	}
}

func (m *Model) scroll() {
	m.top = viewport.Scroll(m.res, m.bodyHeight(), m.focusRow, m.top)
}

// moveBy moves the focus delta entry rows down (positive) or up.
func (m *Model) moveBy(delta int) {
	if len(m.rows) == 0 {
		return
	}
	i := sort.SearchInts(m.rows, m.focusRow)
	i = clamp(i+delta, 0, len(m.rows)-1)
	m.focusPath = m.res.RowToPath[m.rows[i]]
}

// moveToRow focuses the last entry row at or before row.
func (m *Model) moveToRow(row int) {
	if len(m.rows) == 0 {
		return
	}
	i := sort.SearchInts(m.rows, row)
	if i == len(m.rows) || m.rows[i] > row {
		i--
	}
	i = clamp(i, 0, len(m.rows)-1)
	m.focusPath = m.res.RowToPath[m.rows[i]]
}

func (m *Model) hide() {
	if m.focusPath == "" {
		m.err = "cannot hide the root"
		return
	}
	hidden := m.focusPath
	m.hidden.Add(hidden)
	// keep focus on the row that takes the hidden node's place
	i := sort.SearchInts(m.rows, m.focusRow)
	for j := i + 1; j < len(m.rows); j++ {
		if p := m.res.RowToPath[m.rows[j]]; !isWithin(p, hidden) {
			m.focusPath = p
			return
		}
	}
	m.focusPath = m.parentOf(hidden)
}

// search compiles pattern and focuses the first match. An empty pattern
// clears highlighting.
func (m *Model) search(pattern string) {
	if pattern == "" {
		m.pattern = nil
		m.clearCurrent()
		m.refresh()
		return
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		m.err = fmt.Sprintf("invalid pattern: %v", err)
		return
	}
	m.pattern = re
	m.clearCurrent()
	m.refresh()
	if len(m.matches) == 0 {
		m.err = fmt.Sprintf("no match for /%s/", pattern)
		return
	}
	m.setCurrent(m.matches[0])
	m.refresh()
}

func (m *Model) stepMatch(delta int) {
	if len(m.matches) == 0 {
		m.err = "no matches"
		return
	}
	i := m.matchIndex()
	if i < 0 {
		i = 0
		if delta < 0 {
			i = len(m.matches) - 1
		}
	} else {
		i = (i + delta + len(m.matches)) % len(m.matches)
	}
	m.setCurrent(m.matches[i])
}

// setCurrent selects the current match and focuses it.
func (m *Model) setCurrent(path string) {
	m.current = path
	m.hasCurrent = true
	m.focusPath = path
}

func (m *Model) clearCurrent() {
	m.current = ""
	m.hasCurrent = false
}

// matchIndex returns the position of the current match, or -1.
func (m *Model) matchIndex() int {
	if !m.hasCurrent {
		return -1
	}
	for i, p := range m.matches {
		if p == m.current {
			return i
		}
	}
	return -1
}

func (m *Model) isOpenable(path string) bool {
	return m.nodes[path].openable
}

// parentOf returns the parent of a rendered path. Paths outside the value
// fall back to parsing.
func (m *Model) parentOf(path string) string {
	if n, ok := m.nodes[path]; ok {
		return n.parent
	}
	return parentPath(path)
}

func (m *Model) bodyHeight() int {
	h := m.height - 1
	if m.searching {
		h--
	}
	return max(h, 1)
}

// FocusPath returns the path of the focused node.
func (m *Model) FocusPath() string { return m.focusPath }

// FocusRow returns the row of the focused node.
func (m *Model) FocusRow() int { return m.focusRow }

// Top returns the first visible row.
func (m *Model) Top() int { return m.top }

// Result returns the most recent render.
func (m *Model) Result() render.Result { return m.res }

// Current returns the path of the current match and whether one is
// selected.
func (m *Model) Current() (string, bool) { return m.current, m.hasCurrent }

// Err returns the message shown in place of the status line, if any.
func (m *Model) Err() string { return m.err }

func parentPath(path string) string {
	segs := value.ParsePath(path)
	if len(segs) == 0 {
		return ""
	}
	return value.JoinPath(segs[:len(segs)-1])
}

// isWithin reports whether path lies in the subtree rooted at ancestor.
func isWithin(path, ancestor string) bool {
	if path == ancestor {
		return true
	}
	if len(path) <= len(ancestor) || path[:len(ancestor)] != ancestor {
		return false
	}
	next := path[len(ancestor)]
	return next == '.' || next == '['
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
