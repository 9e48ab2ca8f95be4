package render

import (
	"regexp"
	"sort"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// PathSet is a set of paths. A nil PathSet is empty for lookups.
type PathSet map[string]struct{}

// NewPathSet returns a non-nil set holding paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	s.Add(paths...)
	return s
}

// Has reports whether path is in the set.
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Add inserts paths into the set.
func (s PathSet) Add(paths ...string) {
	for _, p := range paths {
		s[p] = struct{}{}
	}
}

// Remove deletes path from the set.
func (s PathSet) Remove(path string) {
	delete(s, path)
}

// Toggle flips membership of path and reports whether it is now present.
func (s PathSet) Toggle(path string) bool {
	if s.Has(path) {
		delete(s, path)
		return false
	}
	s[path] = struct{}{}
	return true
}

// Clone returns a copy of the set; the clone of nil is nil.
func (s PathSet) Clone() PathSet {
	if s == nil {
		return nil
	}
	out := make(PathSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Options controls a single render.
type Options struct {
	// Expanded lists the containers that render open. A nil set expands every
	// container; a non-nil set collapses every non-empty container it does not
	// contain.
	Expanded PathSet
	// Highlight is matched against string values, object keys and scalar
	// literals.
	Highlight *regexp.Regexp
	// CurrentPath selects the path whose matches use the current-highlight
	// style and the larger priority bump.
	CurrentPath *string
	// Hidden lists paths whose subtrees are omitted entirely.
	Hidden PathSet
	// Focus is the row around which priorities are raised.
	Focus *int
}

// ExpandToDepth returns the expanded set opening every container shallower
// than depth. A negative depth returns nil, which expands everything.
func ExpandToDepth(v value.Value, depth int) PathSet {
	if depth < 0 {
		return nil
	}
	set := NewPathSet()
	value.Walk(v, func(path string, d int, node value.Value) bool {
		if d >= depth {
			return false
		}
		if node.IsContainer() {
			set.Add(path)
		}
		return true
	})
	return set
}
