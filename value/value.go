// Package value holds the structured value decoded from an editor's output
// and the conversions from it into ordinary Go types.
//
// Decoding and casting are separate steps. Decode turns JSON text into a
// Value, a closed sum over null, bool, number, string, array and object.
// Cast then converts a Value into a caller-chosen Go type and reports a
// *CastError when the shapes disagree.
package value

import (
	"math"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull is JSON null. It is the zero Kind.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is any JSON number, integral or not.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is a string-keyed map of values.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable structured value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  string  // JSON text of a number
	f    float64 // parsed form of num
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns an integral number.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: strconv.FormatInt(i, 10), f: float64(i)}
}

// Float returns a number. NaN and infinities cannot be marshaled.
func Float(f float64) Value {
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'g', -1, 64), f: f}
}

// Number returns a number from its JSON text, keeping the text as is.
// ok is false if raw is not a JSON number.
func Number(raw string) (Value, bool) {
	res := gjson.Parse(raw)
	if res.Type != gjson.Number || res.Raw != raw {
		return Value{}, false
	}
	return Value{kind: KindNumber, num: raw, f: res.Num}, true
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array returns an array holding a copy of items.
func Array(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: KindArray, arr: arr}
}

// Object returns an object holding a copy of fields.
func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsFloat returns the number held by v as a float64.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindNumber
}

// AsInt returns the number held by v if it is integral and fits in an int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(v.num, 10, 64); err == nil {
		return i, true
	}
	if v.f != math.Trunc(v.f) || v.f < math.MinInt64 || v.f >= math.MaxInt64 {
		return 0, false
	}
	return int64(v.f), true
}

// AsUint returns the number held by v if it is integral, non-negative and
// fits in a uint64.
func (v Value) AsUint() (uint64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if u, err := strconv.ParseUint(v.num, 10, 64); err == nil {
		return u, true
	}
	if v.f != math.Trunc(v.f) || v.f < 0 || v.f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(v.f), true
}

// NumberText returns the JSON text of a number.
func (v Value) NumberText() (string, bool) {
	return v.num, v.kind == KindNumber
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsArray returns a copy of the items of an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, true
}

// AsObject returns a copy of the fields of an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	out := make(map[string]Value, len(v.obj))
	for k, f := range v.obj {
		out[k] = f
	}
	return out, true
}

// Len returns the number of items of an array, fields of an object, or
// bytes of a string. It is 0 for other kinds.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// Index returns item i of an array, or null if out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get returns the field of an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Keys returns the field names of an object in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether v and o hold the same value. Numbers compare by
// numeric value, so 42 equals 42.0.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if a, ok := v.AsInt(); ok {
			if b, ok := o.AsInt(); ok {
				return a == b
			}
		}
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := o.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// ToAny converts v into plain Go values: nil, bool, int64 (integral
// numbers), float64, string, []any and map[string]any.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if i, err := strconv.ParseInt(v.num, 10, 64); err == nil {
			return i
		}
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.ToAny()
		}
		return out
	default:
		return nil
	}
}
