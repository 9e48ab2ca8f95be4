package value

import (
	"strconv"
	"strings"
)

// IndexSegment returns the path segment addressing array element i.
func IndexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// KeySegment returns the path segment addressing object member key.
func KeySegment(key string) string {
	return "." + key
}

// JoinPath concatenates segments into a path. The root path is "".
func JoinPath(segments []string) string {
	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s)
	}
	return b.String()
}

// ParsePath splits a user-supplied path into segments. It accepts the
// canonical form (".a.b[0]"), a form without the leading dot ("a.b[0]"), and
// bracket-quoted keys (`["bad.key"]`). Keys that themselves contain '.' or '['
// can only be addressed with the quoted form.
func ParsePath(input string) []string {
	var segments []string
	i := 0
	for i < len(input) {
		ch := input[i]
		if ch == '[' {
			end := strings.IndexByte(input[i:], ']')
			if end == -1 {
				// unterminated bracket: keep the rest as a key
				segments = append(segments, KeySegment(input[i:]))
				break
			}
			inner := input[i+1 : i+end]
			if len(inner) >= 2 && inner[0] == '"' && inner[len(inner)-1] == '"' {
				if unq, err := strconv.Unquote(inner); err == nil {
					segments = append(segments, KeySegment(unq))
				} else {
					segments = append(segments, KeySegment(inner[1:len(inner)-1]))
				}
			} else if n, err := strconv.Atoi(inner); err == nil && n >= 0 {
				segments = append(segments, IndexSegment(n))
			} else {
				segments = append(segments, KeySegment(inner))
			}
			i += end + 1
			continue
		}
		if ch == '.' {
			i++
		}
		j := i
		for j < len(input) && input[j] != '.' && input[j] != '[' {
			j++
		}
		if j > i || ch == '.' {
			segments = append(segments, KeySegment(input[i:j]))
		}
		i = j
	}
	return segments
}

// NormalizePath returns the canonical spelling of a user-supplied path.
func NormalizePath(input string) string {
	return JoinPath(ParsePath(input))
}

// WalkFunc is called for every node visited by Walk. Returning false skips the
// node's children.
type WalkFunc func(path string, depth int, v Value) bool

// Walk visits v and its descendants in pre-order, following the same rules as
// rendering: undefined object members are skipped and undefined array items
// are visited as null.
func Walk(v Value, fn WalkFunc) {
	walk(v, nil, fn)
}

func walk(v Value, segments []string, fn WalkFunc) {
	if v.IsUndefined() {
		return
	}
	if !fn(JoinPath(segments), len(segments), v) {
		return
	}
	switch v.Kind() {
	case KindArray:
		for i, item := range v.Items() {
			if item.IsUndefined() {
				item = Null()
			}
			walk(item, appendSegment(segments, IndexSegment(i)), fn)
		}
	case KindObject:
		for _, m := range v.Members() {
			walk(m.Value, appendSegment(segments, KeySegment(m.Key)), fn)
		}
	}
}

// appendSegment returns a fresh slice so sibling paths never share backing
// arrays.
func appendSegment(segments []string, seg string) []string {
	out := make([]string, len(segments)+1)
	copy(out, segments)
	out[len(segments)] = seg
	return out
}

// Lookup resolves a user-supplied path against v. The second result is false
// when a segment addresses a missing member, an out of range index, or a
// scalar.
func Lookup(v Value, path string) (Value, bool) {
	cur := v
	for _, seg := range ParsePath(path) {
		if strings.HasPrefix(seg, "[") {
			i, err := strconv.Atoi(seg[1 : len(seg)-1])
			if err != nil || cur.Kind() != KindArray || i >= len(cur.Items()) {
				return Value{}, false
			}
			cur = cur.Items()[i]
			if cur.IsUndefined() {
				cur = Null()
			}
			continue
		}
		if cur.Kind() != KindObject {
			return Value{}, false
		}
		next, ok := cur.Get(seg[1:])
		if !ok || next.IsUndefined() {
			return Value{}, false
		}
		cur = next
	}
	return cur, !cur.IsUndefined()
}
