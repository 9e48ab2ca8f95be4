package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/jvx/internal/viewport"
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the frame as text: the visible body rows, the search input
// while searching, and the status line.
func (m *Model) Render() string {
	body := m.bodyHeight()
	lines := viewport.Lines(m.res.Text, m.top, body, m.width-gutterWidth)

	var b strings.Builder
	for i := 0; i < body; i++ {
		row := m.top + i
		b.WriteString(m.gutter(row))
		if i < len(lines) {
			b.WriteString(lines[i])
		}
		b.WriteString("\n")
	}
	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) gutter(row int) string {
	if row != m.focusRow {
		return strings.Repeat(" ", gutterWidth)
	}
	if m.noColor {
		return "> "
	}
	return m.focusStyle.Render("▌") + " "
}

// statusLine shows the focus path on the left and position and match
// counters on the right, padded to the window width. Errors take the place
// of the path.
func (m *Model) statusLine() string {
	left := displayPath(m.focusPath)
	if m.err != "" {
		left = m.err
	}
	right := fmt.Sprintf("%d/%d", m.focusRow+1, m.res.LineCount())
	if m.pattern != nil {
		if i := m.matchIndex(); i >= 0 {
			right = fmt.Sprintf("match %d/%d  %s", i+1, len(m.matches), right)
		} else {
			right = fmt.Sprintf("%d matches  %s", len(m.matches), right)
		}
	}
	line := padBetween(left, right, m.width)
	if m.err != "" {
		return m.errorStyle.Render(line)
	}
	return m.statusStyle.Render(line)
}

// padBetween joins left and right with spaces so the result is width cells
// wide. Left is truncated when both do not fit.
func padBetween(left, right string, width int) string {
	rw := runewidth.StringWidth(right)
	room := width - rw - 1
	if room < 1 {
		return runewidth.Truncate(right, width, viewport.Tail)
	}
	if runewidth.StringWidth(left) > room {
		left = runewidth.Truncate(left, room, viewport.Tail)
	}
	return runewidth.FillRight(left, width-rw) + right
}

// displayPath spells the root path as "." and every other path as is.
func displayPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}
