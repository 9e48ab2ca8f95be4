package loader

import (
	"github.com/oakwood-commons/jvx/pkg/value"
)

const maxDecodeDepth = 20

// TryDecode attempts to parse a string as serialized data (JWT, JSON, YAML,
// TOML, NDJSON). It succeeds only when the result is an object or array;
// plain words, numbers and other scalars report false.
func TryDecode(s string) (value.Value, bool) {
	if s == "" {
		return value.Value{}, false
	}
	parsed, err := LoadRoot(s)
	if err != nil || !parsed.IsContainer() {
		return value.Value{}, false
	}
	return parsed, true
}

// RecursiveDecode walks v and replaces every string that holds serialized
// data with its parsed structure, recursing into the result.
func RecursiveDecode(v value.Value) value.Value {
	return recursiveDecode(v, 0)
}

func recursiveDecode(v value.Value, depth int) value.Value {
	if depth > maxDecodeDepth {
		return v
	}

	switch v.Kind() {
	case value.KindObject:
		members := make([]value.Member, 0, v.Len())
		for _, m := range v.Members() {
			members = append(members, value.Member{Key: m.Key, Value: recursiveDecode(m.Value, depth+1)})
		}
		return value.Object(members...)
	case value.KindArray:
		items := make([]value.Value, 0, v.Len())
		for _, item := range v.Items() {
			items = append(items, recursiveDecode(item, depth+1))
		}
		return value.Array(items...)
	case value.KindString:
		if decoded, ok := TryDecode(v.Text()); ok {
			return recursiveDecode(decoded, depth+1)
		}
		return v
	default:
		return v
	}
}
