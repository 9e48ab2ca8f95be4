// Package theme maps render categories to terminal colors and loads the
// layered YAML configuration that defines them.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/jvx/internal/render"
)

// Theme is a named color palette. Nil colors leave the fragment undecorated.
type Theme struct {
	Name        string
	Null        color.Color
	Number      color.Color
	Boolean     color.Color
	String      color.Color
	Key         color.Color
	Bracket     color.Color
	Comma       color.Color
	Colon       color.Color
	HighlightFG color.Color
	HighlightBG color.Color
	CurrentFG   color.Color
	CurrentBG   color.Color
	StatusFG    color.Color // viewer status bar
	StatusBG    color.Color
	FocusBG     color.Color // viewer focus row
	ErrorFG     color.Color
}

// fallbackTheme is used when the embedded config cannot be read and as the
// base every configured theme is layered on.
func fallbackTheme() Theme {
	return Theme{
		Name:        "dark",
		Null:        lipgloss.Color("244"),
		Number:      lipgloss.Color("141"),
		Boolean:     lipgloss.Color("214"),
		String:      lipgloss.Color("114"),
		Key:         lipgloss.Color("81"),
		Bracket:     lipgloss.Color("250"),
		Comma:       lipgloss.Color("244"),
		Colon:       lipgloss.Color("244"),
		HighlightFG: lipgloss.Color("16"),
		HighlightBG: lipgloss.Color("220"),
		CurrentFG:   lipgloss.Color("16"),
		CurrentBG:   lipgloss.Color("208"),
		StatusFG:    lipgloss.Color("250"),
		StatusBG:    lipgloss.Color("236"),
		FocusBG:     lipgloss.Color("237"),
		ErrorFG:     lipgloss.Color("203"),
	}
}

// Default returns the default theme of the embedded configuration.
func Default() Theme {
	cfg, err := EmbeddedDefaultConfig()
	if err != nil {
		return fallbackTheme()
	}
	if th, ok := cfg.Theme(cfg.DefaultThemeName()); ok {
		return th
	}
	return fallbackTheme()
}

// FromConfig builds a Theme from cfg, taking unset colors from the fallback
// palette.
func FromConfig(name string, cfg ThemeConfig) Theme {
	th := fallbackTheme()
	th.Name = name
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.Null, &th.Null)
	set(cfg.Number, &th.Number)
	set(cfg.Boolean, &th.Boolean)
	set(cfg.String, &th.String)
	set(cfg.Key, &th.Key)
	set(cfg.Bracket, &th.Bracket)
	set(cfg.Comma, &th.Comma)
	set(cfg.Colon, &th.Colon)
	set(cfg.HighlightFG, &th.HighlightFG)
	set(cfg.HighlightBG, &th.HighlightBG)
	set(cfg.CurrentFG, &th.CurrentFG)
	set(cfg.CurrentBG, &th.CurrentBG)
	set(cfg.StatusFG, &th.StatusFG)
	set(cfg.StatusBG, &th.StatusBG)
	set(cfg.FocusBG, &th.FocusBG)
	set(cfg.ErrorFG, &th.ErrorFG)
	return th
}

// StatusStyle styles the viewer status bar.
func (t Theme) StatusStyle() lipgloss.Style {
	return colored(lipgloss.NewStyle(), t.StatusFG, t.StatusBG)
}

// FocusStyle styles the viewer focus row.
func (t Theme) FocusStyle() lipgloss.Style {
	return colored(lipgloss.NewStyle(), nil, t.FocusBG)
}

// ErrorStyle styles error messages in the viewer.
func (t Theme) ErrorStyle() lipgloss.Style {
	return colored(lipgloss.NewStyle(), t.ErrorFG, nil).Bold(true)
}

func colored(s lipgloss.Style, fg, bg color.Color) lipgloss.Style {
	if fg != nil {
		s = s.Foreground(fg)
	}
	if bg != nil {
		s = s.Background(bg)
	}
	return s
}

// Styles adapts a Theme to render.Styles. Build one with NewStyles.
type Styles struct {
	indent string
	styles map[render.Category]lipgloss.Style
}

// NewStyles builds the per-category styles of t. An empty indent uses
// render.DefaultIndent.
func NewStyles(t Theme, indent string) *Styles {
	if indent == "" {
		indent = render.DefaultIndent
	}
	base := lipgloss.NewStyle()
	fg := func(c color.Color) lipgloss.Style { return colored(base, c, nil) }
	return &Styles{
		indent: indent,
		styles: map[render.Category]lipgloss.Style{
			render.CategoryNull:             fg(t.Null).Italic(true),
			render.CategoryNumber:           fg(t.Number),
			render.CategoryBoolean:          fg(t.Boolean),
			render.CategoryString:           fg(t.String),
			render.CategoryKey:              fg(t.Key).Bold(true),
			render.CategoryBracket:          fg(t.Bracket),
			render.CategoryComma:            fg(t.Comma),
			render.CategoryColon:            fg(t.Colon),
			render.CategoryHighlight:        colored(base, t.HighlightFG, t.HighlightBG),
			render.CategoryHighlightCurrent: colored(base, t.CurrentFG, t.CurrentBG).Bold(true),
		},
	}
}

// Style implements render.Styles.
func (s *Styles) Style(c render.Category) render.StyleFunc {
	st, ok := s.styles[c]
	if !ok {
		return nil
	}
	return func(text string) string {
		if text == "" {
			return ""
		}
		return st.Render(text)
	}
}

// Indent implements render.Styles.
func (s *Styles) Indent() string { return s.indent }
