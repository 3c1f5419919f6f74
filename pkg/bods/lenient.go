package bods

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// decodeLenient fills the fields of the struct v from the top-level values
// in keys. A value that does not fit its field is coerced as far as possible
// (numbers and booleans become strings, numeric strings become numbers,
// anything else is left empty) and its attribute name is returned.
func decodeLenient(v reflect.Value, keys map[string]json.RawMessage) []string {
	var mismatches []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := jsonName(t.Field(i))
		if !ok {
			continue
		}
		raw, ok := lookup(keys, name)
		if !ok {
			continue
		}

		field := v.Field(i)
		if err := json.Unmarshal(raw, field.Addr().Interface()); err == nil {
			continue
		}
		field.SetZero()

		var generic any
		_ = json.Unmarshal(raw, &generic)
		coerce(field, generic)
		mismatches = append(mismatches, name)
	}
	return mismatches
}

// coerce assigns data, a generic JSON value, to v.
func coerce(v reflect.Value, data any) {
	if data == nil {
		return
	}

	switch v.Kind() {
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		coerce(elem.Elem(), data)
		if !elem.Elem().IsZero() {
			v.Set(elem)
		}

	case reflect.Struct:
		obj, ok := data.(map[string]any)
		if !ok {
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name, ok := jsonName(t.Field(i))
			if !ok {
				continue
			}
			if value, ok := lookup(obj, name); ok {
				coerce(v.Field(i), value)
			}
		}

	case reflect.Slice:
		arr, ok := data.([]any)
		if !ok {
			return
		}
		out := reflect.MakeSlice(v.Type(), 0, len(arr))
		for _, item := range arr {
			elem := reflect.New(v.Type().Elem()).Elem()
			coerce(elem, item)
			out = reflect.Append(out, elem)
		}
		v.Set(out)

	case reflect.String:
		switch d := data.(type) {
		case string:
			v.SetString(d)
		case float64:
			v.SetString(strconv.FormatFloat(d, 'f', -1, 64))
		case bool:
			v.SetString(strconv.FormatBool(d))
		}

	case reflect.Float64:
		switch d := data.(type) {
		case float64:
			v.SetFloat(d)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(d), 64); err == nil {
				v.SetFloat(f)
			}
		}
	}
}

// jsonName returns the JSON attribute name of a struct field.
func jsonName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, true
}

// lookup finds name in m, falling back to a case-insensitive match the way
// encoding/json does.
func lookup[V any](m map[string]V, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	var zero V
	return zero, false
}
