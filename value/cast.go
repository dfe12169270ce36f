package value

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var valueType = reflect.TypeOf(Value{})

// Cast converts v into a T.
//
// Supported targets are strings, bools, integers (the number must be
// integral and in range), floats, slices, arrays (lengths must match), maps
// with string keys, structs, pointers, interfaces with no methods, and
// Value itself. Struct fields are matched by their json tag, then by name
// ignoring case; unknown object fields are ignored. A null converts to the
// zero value of pointers, slices, maps and interfaces and fails otherwise.
func Cast[T any](v Value) (T, error) {
	var out T
	err := Into(v, &out)
	return out, err
}

// Into stores v into the value target points to. See Cast for the rules.
func Into(v Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("value: Into target must be a non-nil pointer")
	}
	return assign(v, rv.Elem(), "")
}

func assign(v Value, rv reflect.Value, path string) error {
	t := rv.Type()
	if t == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	mismatch := func() error {
		return &CastError{Expected: t.String(), Path: path, Actual: v}
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return mismatch()
		}
		if v.kind == KindNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		rv.Set(reflect.ValueOf(v.ToAny()))
		return nil

	case reflect.Pointer:
		if v.kind == KindNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := assign(v, elem.Elem(), path); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.String:
		s, ok := v.AsString()
		if !ok {
			return mismatch()
		}
		rv.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := v.AsBool()
		if !ok {
			return mismatch()
		}
		rv.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.AsInt()
		if !ok || rv.OverflowInt(i) {
			return mismatch()
		}
		rv.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := v.AsUint()
		if !ok || rv.OverflowUint(u) {
			return mismatch()
		}
		rv.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := v.AsFloat()
		if !ok || rv.OverflowFloat(f) {
			return mismatch()
		}
		rv.SetFloat(f)
		return nil

	case reflect.Slice:
		if v.kind == KindNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if v.kind != KindArray {
			return mismatch()
		}
		out := reflect.MakeSlice(t, len(v.arr), len(v.arr))
		for i, item := range v.arr {
			if err := assign(item, out.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil

	case reflect.Array:
		if v.kind != KindArray || len(v.arr) != t.Len() {
			return mismatch()
		}
		for i, item := range v.arr {
			if err := assign(item, rv.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return mismatch()
		}
		if v.kind == KindNull {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if v.kind != KindObject {
			return mismatch()
		}
		out := reflect.MakeMapWithSize(t, len(v.obj))
		for _, k := range v.Keys() {
			elem := reflect.New(t.Elem()).Elem()
			if err := assign(v.obj[k], elem, keyPath(path, k)); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
		}
		rv.Set(out)
		return nil

	case reflect.Struct:
		if v.kind != KindObject {
			return mismatch()
		}
		return assignStruct(v, rv, path)

	default:
		return mismatch()
	}
}

func assignStruct(v Value, rv reflect.Value, path string) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		key, item, ok := lookupField(v, name)
		if !ok {
			continue
		}
		if err := assign(item, rv.Field(i), keyPath(path, key)); err != nil {
			return err
		}
	}
	return nil
}

// lookupField finds name exactly, or else ignoring case.
func lookupField(v Value, name string) (string, Value, bool) {
	if item, ok := v.obj[name]; ok {
		return name, item, true
	}
	for _, k := range v.Keys() {
		if strings.EqualFold(k, name) {
			return k, v.obj[k], true
		}
	}
	return "", Value{}, false
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func keyPath(path, key string) string {
	return path + "." + key
}
