// Package viewport chooses which slice of a rendered document to show in a
// window of fixed height.
package viewport

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/jvx/internal/render"
)

// Tail marks a line cut short by Lines.
const Tail = "…"

// RowPriority returns the priority of the path rendered on row, or 0 for rows
// that carry no path.
func RowPriority(res render.Result, row int) int {
	path, ok := res.RowToPath[row]
	if !ok {
		return 0
	}
	return res.Priorities[path]
}

// Scroll returns the first visible row of a window of height rows. The focus
// row always stays visible; among the tops that keep it visible, the one with
// the largest sum of row priorities wins. Ties keep top if it is among the
// best, else the smallest candidate.
func Scroll(res render.Result, height, focus, top int) int {
	n := res.LineCount()
	if height <= 0 || n <= height {
		return 0
	}
	focus = clamp(focus, 0, n-1)
	lo := max(0, focus-height+1)
	hi := min(focus, n-height)

	prio := make([]int, n)
	for row := range prio {
		prio[row] = RowPriority(res, row)
	}

	sum := 0
	for row := lo; row < lo+height; row++ {
		sum += prio[row]
	}
	best, bestSum := lo, sum
	for t := lo + 1; t <= hi; t++ {
		sum += prio[t+height-1] - prio[t-1]
		if sum > bestSum || (sum == bestSum && t == top) {
			best, bestSum = t, sum
		}
	}
	return best
}

// Lines returns height lines of text starting at top, each truncated to width
// display cells. Escape sequences do not count towards the width. A width of
// zero or less disables truncation.
func Lines(text string, top, height, width int) []string {
	if text == "" || height <= 0 {
		return nil
	}
	all := strings.Split(text, "\n")
	top = clamp(top, 0, len(all))
	end := min(len(all), top+height)
	out := make([]string, 0, end-top)
	for _, line := range all[top:end] {
		if width > 0 && ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, Tail)
		}
		out = append(out, line)
	}
	return out
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
