// Package value defines the JSON-like value tree rendered by jvx, together with
// the path addressing scheme used to refer to nodes inside it.
package value

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindUndefined is an absent value. It is the zero Kind so that the zero
	// Value is undefined.
	KindUndefined Kind = iota
	KindNull
	KindNumber
	// KindLossless is a number carried as its canonical decimal text, used when
	// a float64 would not reproduce the source digits.
	KindLossless
	KindBool
	KindString
	KindArray
	KindObject
	// KindOpaque wraps any other Go value. It is rendered through structural
	// (JSON) serialization.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindLossless:
		return "lossless"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindOpaque:
		return "opaque"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one key/value entry of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable node of a JSON-like tree.
type Value struct {
	kind    Kind
	num     float64
	text    string
	boolean bool
	items   []Value
	members []Member
	opaque  any
}

// Undefined returns the absent value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Number returns a numeric value. Non-finite numbers are allowed; the renderer
// treats them as opaque.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Lossless returns a number that renders as text verbatim.
func Lossless(text string) Value { return Value{kind: KindLossless, text: text} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array returns an array holding items in order.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Object returns an object holding members in the given order.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: KindObject, members: members}
}

// Opaque wraps an arbitrary Go value.
func Opaque(v any) Value { return Value{kind: KindOpaque, opaque: v} }

// M is shorthand for building a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is absent.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// Float returns the number held by a KindNumber value.
func (v Value) Float() float64 { return v.num }

// IsFinite reports whether v is a finite KindNumber.
func (v Value) IsFinite() bool {
	return v.kind == KindNumber && !math.IsNaN(v.num) && !math.IsInf(v.num, 0)
}

// Text returns the string of a KindString value or the digits of a
// KindLossless value.
func (v Value) Text() string { return v.text }

// Boolean returns the flag held by a KindBool value.
func (v Value) Boolean() bool { return v.boolean }

// Items returns the elements of an array. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns the entries of an object in order. The slice must not be
// modified.
func (v Value) Members() []Member { return v.members }

// Get returns the first member named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of items or members of a container, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Opaque returns the Go value wrapped by a KindOpaque value.
func (v Value) Opaque() any { return v.opaque }
