package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jvx/pkg/value"
)

func TestTryDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		kind  value.Kind
	}{
		{"json object", `{"a": 1}`, true, value.KindObject},
		{"json array", `[1, 2]`, true, value.KindArray},
		{"yaml mapping", "a: 1\nb: 2", true, value.KindObject},
		{"jwt", validJWT, true, value.KindObject},
		{"plain string", "hello world", false, value.KindUndefined},
		{"number", "42", false, value.KindUndefined},
		{"boolean", "true", false, value.KindUndefined},
		{"empty", "", false, value.KindUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryDecode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}

func TestRecursiveDecode(t *testing.T) {
	in := value.Object(
		value.M("plain", value.String("text")),
		value.M("embedded", value.String(`{"inner": "{\"deep\": [1]}"}`)),
		value.M("list", value.Array(value.String("[true]"), value.Number(3))),
	)

	out := RecursiveDecode(in)

	assert.Equal(t, "text", get(t, out, "plain").Text())
	deep := get(t, out, "embedded", "inner", "deep")
	require.Equal(t, value.KindArray, deep.Kind())
	assert.Equal(t, []any{float64(1)}, value.ToAny(deep))

	list := get(t, out, "list")
	assert.Equal(t, value.KindArray, list.Items()[0].Kind())
	assert.Equal(t, float64(3), list.Items()[1].Float())

	// input is not modified
	assert.Equal(t, value.KindString, get(t, in, "embedded").Kind())
}

func TestRecursiveDecodeKeepsOrder(t *testing.T) {
	in := value.Array(value.String(`{"z": 1, "a": 2}`))
	out := RecursiveDecode(in)
	assert.Equal(t, []string{"z", "a"}, memberKeys(out.Items()[0]))
}
