package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// maxSafeInteger is the largest integer a float64 holds without rounding.
const maxSafeInteger = 1<<53 - 1

// DecodeJSON parses a single JSON document, preserving object member order and
// the exact digits of numbers a float64 cannot reproduce.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return Value{}, fmt.Errorf("unexpected data after top-level JSON value")
		}
		return Value{}, err
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return ParseNumber(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (Value, error) {
	members := []Member{}
	positions := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key, got %T", tok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("member %q: %w", key, err)
		}
		// Duplicate keys keep their first position and their last value.
		if pos, dup := positions[key]; dup {
			members[pos].Value = val
			continue
		}
		positions[key] = len(members)
		members = append(members, Member{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Object(members...), nil
}

func decodeJSONArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		val, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("element [%d]: %w", len(items), err)
		}
		items = append(items, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Array(items...), nil
}

// DecodeYAML parses a single YAML document, preserving mapping order.
func DecodeYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, err
	}
	return FromYAMLNode(&node)
}

// FromYAMLNode converts a parsed YAML node tree into a Value. Aliases are
// resolved and merge keys ("<<") contribute members the mapping does not
// already define.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case 0:
		// empty document
		return Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return Value{}, fmt.Errorf("element [%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return Array(items...), nil
	case yaml.MappingNode:
		return fromYAMLMapping(n)
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return Value{}, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

func fromYAMLMapping(n *yaml.Node) (Value, error) {
	members := make([]Member, 0, len(n.Content)/2)
	positions := map[string]int{}
	var merged []Member
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			mv, err := FromYAMLNode(vn)
			if err != nil {
				return Value{}, err
			}
			merged = append(merged, mergeSources(mv)...)
			continue
		}
		v, err := FromYAMLNode(vn)
		if err != nil {
			return Value{}, fmt.Errorf("member %q: %w", k.Value, err)
		}
		if pos, dup := positions[k.Value]; dup {
			members[pos].Value = v
			continue
		}
		positions[k.Value] = len(members)
		members = append(members, Member{Key: k.Value, Value: v})
	}
	for _, m := range merged {
		if _, exists := positions[m.Key]; exists {
			continue
		}
		positions[m.Key] = len(members)
		members = append(members, m)
	}
	return Object(members...), nil
}

// mergeSources flattens the value of a merge key: a mapping or a sequence of
// mappings.
func mergeSources(v Value) []Member {
	switch v.Kind() {
	case KindObject:
		return v.Members()
	case KindArray:
		var out []Member
		for _, item := range v.Items() {
			out = append(out, mergeSources(item)...)
		}
		return out
	default:
		return nil
	}
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		if IsJSONNumber(n.Value) {
			return ParseNumber(n.Value), nil
		}
	}
	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// out of int64 range; keep the digits
			return Lossless(n.Value), nil
		}
		return fromInt64(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}

func fromInt64(i int64) Value {
	if i > maxSafeInteger || i < -maxSafeInteger {
		return Lossless(strconv.FormatInt(i, 10))
	}
	return Number(float64(i))
}

func fromUint64(u uint64) Value {
	if u > maxSafeInteger {
		return Lossless(strconv.FormatUint(u, 10))
	}
	return Number(float64(u))
}

// FromAny converts a decoded Go value (as produced by encoding/json, yaml.v3,
// go-toml or CEL) into a Value. Go maps carry no order, so their keys are
// sorted. Structs, channels, functions and other non-plain values become
// opaque.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return fromInt64(int64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return fromInt64(t)
	case uint:
		return fromUint64(uint64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return fromUint64(t)
	case json.Number:
		return ParseNumber(t.String())
	case time.Time:
		return String(t.Format(time.RFC3339Nano))
	case []byte:
		return Opaque(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			members = append(members, Member{Key: k, Value: FromAny(t[k])})
		}
		return Object(members...)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case fmt.Stringer:
		// go-toml local dates and times
		return String(t.String())
	default:
		return fromReflect(x)
	}
}

// fromReflect handles typed containers (map[string]T, []T) that the type
// switch in FromAny does not list.
func fromReflect(x any) Value {
	rv := reflect.ValueOf(x)
	//exhaustive:ignore // only containers and pointers need unwrapping
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Opaque(x)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			members = append(members, Member{Key: k, Value: FromAny(val.Interface())})
		}
		return Object(members...)
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = FromAny(rv.Index(i).Interface())
		}
		return Array(items...)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return FromAny(rv.Elem().Interface())
	default:
		return Opaque(x)
	}
}

// ToAny converts v into plain Go values (map[string]any, []any, float64,
// int64, string, bool, nil) for consumers such as expression evaluators.
// Member order is lost and lossless numbers are narrowed to int64 or float64.
func ToAny(v Value) any {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return nil
	case KindNumber:
		return v.Float()
	case KindLossless:
		if i, err := strconv.ParseInt(v.Text(), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Text(), 64); err == nil {
			return f
		}
		return math.NaN()
	case KindBool:
		return v.Boolean()
	case KindString:
		return v.Text()
	case KindArray:
		out := make([]any, len(v.Items()))
		for i, item := range v.Items() {
			out[i] = ToAny(item)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Len())
		for _, m := range v.Members() {
			if m.Value.IsUndefined() {
				continue
			}
			out[m.Key] = ToAny(m.Value)
		}
		return out
	default:
		return v.Opaque()
	}
}
