package ui

import (
	"fmt"
	"strings"
)

// Action is what a key press asks the viewer to do.
type Action string

const (
	ActionNone        Action = ""
	ActionDown        Action = "down"
	ActionUp          Action = "up"
	ActionPageDown    Action = "page_down"
	ActionPageUp      Action = "page_up"
	ActionTop         Action = "top"
	ActionBottom      Action = "bottom"
	ActionToggle      Action = "toggle"
	ActionExpand      Action = "expand"
	ActionCollapse    Action = "collapse"
	ActionExpandAll   Action = "expand_all"
	ActionCollapseAll Action = "collapse_all"
	ActionHide        Action = "hide"
	ActionUnhideAll   Action = "unhide_all"
	ActionSearch      Action = "search"
	ActionNextMatch   Action = "next_match"
	ActionPrevMatch   Action = "prev_match"
	ActionClearSearch Action = "clear_search"
	ActionQuit        Action = "quit"
)

// KeyBindings maps key names, as reported by tea.KeyPressMsg.String, to
// actions.
type KeyBindings map[string]Action

// DefaultKeyBindings combines vim-style letters with arrow and paging keys.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		"j":      ActionDown,
		"down":   ActionDown,
		"k":      ActionUp,
		"up":     ActionUp,
		"pgdown": ActionPageDown,
		"ctrl+d": ActionPageDown,
		"pgup":   ActionPageUp,
		"ctrl+u": ActionPageUp,
		"g":      ActionTop,
		"home":   ActionTop,
		"G":      ActionBottom,
		"end":    ActionBottom,
		"enter":  ActionToggle,
		"space":  ActionToggle,
		"l":      ActionExpand,
		"right":  ActionExpand,
		"h":      ActionCollapse,
		"left":   ActionCollapse,
		"E":      ActionExpandAll,
		"C":      ActionCollapseAll,
		"x":      ActionHide,
		"X":      ActionUnhideAll,
		"/":      ActionSearch,
		"n":      ActionNextMatch,
		"N":      ActionPrevMatch,
		"esc":    ActionClearSearch,
		"q":      ActionQuit,
		"ctrl+c": ActionQuit,
	}
}

// Lookup returns the action bound to key.
func (b KeyBindings) Lookup(key string) Action {
	if a, ok := b[key]; ok {
		return a
	}
	return ActionNone
}

var keyHelp = [][2]string{
	{"j/k, up/down", "move focus"},
	{"pgup/pgdown", "move focus by a page"},
	{"g/G", "first/last row"},
	{"enter, space", "fold or unfold"},
	{"l/h", "unfold, or fold and go to parent"},
	{"E/C", "unfold all, fold all"},
	{"x/X", "hide subtree, unhide all"},
	{"/", "search with a regular expression"},
	{"n/N", "next/previous match"},
	{"esc", "clear search"},
	{"q", "quit"},
}

// KeyHelp describes the default key bindings, one per line.
func KeyHelp() string {
	var b strings.Builder
	for _, kv := range keyHelp {
		fmt.Fprintf(&b, "  %-14s %s\n", kv[0], kv[1])
	}
	return b.String()
}
