package value

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// Decode parses the text an editor printed for a variable.
//
// Surrounding whitespace is ignored. Blank input and a literal null both
// mean the variable is absent and yield ok == false with a nil error. Any
// other text that is not a single JSON value is a *DecodeError.
func Decode(data []byte) (v Value, ok bool, err error) {
	text := bytes.TrimSpace(data)
	if len(text) == 0 {
		return Value{}, false, nil
	}
	if !gjson.ValidBytes(text) {
		return Value{}, false, &DecodeError{Raw: string(data)}
	}

	res := gjson.ParseBytes(text)
	if res.Type == gjson.Null {
		return Value{}, false, nil
	}
	return fromResult(res), true, nil
}

// Valid reports whether data holds one JSON value, ignoring surrounding
// whitespace. Blank input is not valid.
func Valid(data []byte) bool {
	text := bytes.TrimSpace(data)
	return len(text) > 0 && gjson.ValidBytes(text)
}

func fromResult(res gjson.Result) Value {
	switch res.Type {
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Value{kind: KindNumber, num: res.Raw, f: res.Num}
	case gjson.String:
		return String(res.Str)
	case gjson.JSON:
		if res.IsArray() {
			var items []Value
			res.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return Value{kind: KindArray, arr: items}
		}
		obj := make(map[string]Value)
		res.ForEach(func(key, field gjson.Result) bool {
			obj[key.Str] = fromResult(field)
			return true
		})
		return Value{kind: KindObject, obj: obj}
	default:
		return Value{}
	}
}

// MarshalJSON encodes v as compact JSON with object keys sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil)
}

// UnmarshalJSON decodes JSON text into v. A JSON null yields the null value.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, _, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.appendJSON(nil)
	if err != nil {
		return fmt.Sprintf("<invalid %s: %v>", v.kind, err)
	}
	return string(b)
}

func (v Value) appendJSON(dst []byte) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		if v.b {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case KindNumber:
		if !gjson.Valid(v.num) {
			return nil, fmt.Errorf("number %s has no JSON encoding", v.num)
		}
		return append(dst, v.num...), nil
	case KindString:
		return gjson.AppendJSONString(dst, v.s), nil
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = item.appendJSON(dst); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindObject:
		dst = append(dst, '{')
		for i, k := range v.Keys() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = gjson.AppendJSONString(dst, k)
			dst = append(dst, ':')
			var err error
			if dst, err = v.obj[k].appendJSON(dst); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("unknown kind %d", v.kind)
	}
}
