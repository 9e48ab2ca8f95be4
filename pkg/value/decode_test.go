package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(v Value) []string {
	keys := make([]string, 0, v.Len())
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	return keys
}

func TestDecodeJSONPreservesOrder(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"zeta": 1, "alpha": [true, null, "s"], "mid": {"b": 2, "a": 1}}`))
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keysOf(v))

	alpha, _ := v.Get("alpha")
	require.Equal(t, 3, alpha.Len())
	assert.Equal(t, KindBool, alpha.Items()[0].Kind())
	assert.Equal(t, KindNull, alpha.Items()[1].Kind())
	assert.Equal(t, "s", alpha.Items()[2].Text())

	mid, _ := v.Get("mid")
	assert.Equal(t, []string{"b", "a"}, keysOf(mid))
}

func TestDecodeJSONLosslessNumbers(t *testing.T) {
	v, err := DecodeJSON([]byte(`[9007199254740993, 2.50, 7]`))
	require.NoError(t, err)
	items := v.Items()
	assert.Equal(t, KindLossless, items[0].Kind())
	assert.Equal(t, "9007199254740993", items[0].Text())
	assert.Equal(t, KindLossless, items[1].Kind())
	assert.Equal(t, "2.50", items[1].Text())
	assert.Equal(t, KindNumber, items[2].Kind())
	assert.Equal(t, 7.0, items[2].Float())
}

func TestDecodeJSONDuplicateKeys(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keysOf(v))
	a, _ := v.Get("a")
	assert.Equal(t, 3.0, a.Float())
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing data", `{} {}`},
		{"unterminated", `{"a": `},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.input))
			require.Error(t, err)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `
base: &base
  color: red
  size: 1
item:
  <<: *base
  size: 2
  name: widget
big: 123456789012345678901234
ratio: 0.5
none: ~
tags: [a, b]
`
	v, err := DecodeYAML([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "item", "big", "ratio", "none", "tags"}, keysOf(v))

	item, _ := v.Get("item")
	assert.Equal(t, []string{"size", "name", "color"}, keysOf(item))
	size, _ := item.Get("size")
	assert.Equal(t, 2.0, size.Float())

	big, _ := v.Get("big")
	assert.Equal(t, KindLossless, big.Kind())
	assert.Equal(t, "123456789012345678901234", big.Text())

	none, _ := v.Get("none")
	assert.Equal(t, KindNull, none.Kind())

	tags, _ := v.Get("tags")
	assert.Equal(t, 2, tags.Len())
}

func TestFromAny(t *testing.T) {
	type custom struct{ A int }

	v := FromAny(map[string]any{
		"b":      []any{1, "two", nil},
		"a":      json.Number("1.10"),
		"typed":  map[string]int{"y": 2, "x": 1},
		"struct": custom{A: 1},
		"huge":   int64(1) << 60,
	})
	require.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"a", "b", "huge", "struct", "typed"}, keysOf(v))

	a, _ := v.Get("a")
	assert.Equal(t, KindLossless, a.Kind())

	b, _ := v.Get("b")
	assert.Equal(t, KindNumber, b.Items()[0].Kind())
	assert.Equal(t, KindNull, b.Items()[2].Kind())

	typed, _ := v.Get("typed")
	assert.Equal(t, []string{"x", "y"}, keysOf(typed))

	st, _ := v.Get("struct")
	assert.Equal(t, KindOpaque, st.Kind())

	huge, _ := v.Get("huge")
	assert.Equal(t, "1152921504606846976", huge.Text())
}

func TestToAnyRoundTrip(t *testing.T) {
	v := Object(
		M("n", Number(1.5)),
		M("big", Lossless("12")),
		M("gone", Undefined()),
		M("list", Array(Bool(true), Null())),
	)
	got := ToAny(v)
	assert.Equal(t, map[string]any{
		"n":    1.5,
		"big":  int64(12),
		"list": []any{true, nil},
	}, got)
}
