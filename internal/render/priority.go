package render

import "github.com/oakwood-commons/jvx/pkg/value"

// Priorities maps a path to its importance score for the current render.
type Priorities map[string]int

// Bump adds delta to the priority of the path built from segments, then raises
// every strict ancestor to at least the new value. Ancestors are never given
// the delta itself, so a container scores as high as its most important
// descendant. The max rule only holds for increases; non-positive deltas are
// ignored. Bump returns the path's resulting priority.
func (p Priorities) Bump(segments []string, delta int) int {
	path := value.JoinPath(segments)
	if delta <= 0 {
		return p[path]
	}
	next := p[path] + delta
	p[path] = next
	for i := len(segments) - 1; i >= 0; i-- {
		ancestor := value.JoinPath(segments[:i])
		if p[ancestor] < next {
			p[ancestor] = next
		}
	}
	return next
}

// Get returns the priority of path, or 0 when the path was not rendered.
func (p Priorities) Get(path string) int {
	return p[path]
}
