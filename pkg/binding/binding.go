package binding

import (
	"fmt"
	"reflect"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag naming the control a field binds to.
const TagName = "form"

// Decode copies the value of c into out, a pointer to a struct, map, slice or
// scalar. Struct fields are matched to group keys through the "form" tag and
// strings are converted to numbers and booleans as needed.
func Decode(c form.Control, out any) error {
	var value any
	c.Zone().Do(func() { value = c.Value() })

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("decode %s: %w", describe(c), err)
	}
	return nil
}

// Encode converts in into the generic shape accepted by SetValue: structs and
// maps become map[string]any, slices and arrays become []any.
func Encode(in any) (any, error) {
	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Struct:
		var m map[string]any
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: TagName, Result: &m})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, err
		}
		return encodeMap(m)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("binding: map key must be a string, got %s", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return encodeMap(m)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		fallthrough
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			v, err := Encode(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	default:
		return rv.Interface(), nil
	}
}

func encodeMap(m map[string]any) (map[string]any, error) {
	for k, v := range m {
		encoded, err := Encode(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m[k] = encoded
	}
	return m, nil
}

// Set encodes in and replaces the value of c with it.
func Set(c form.Control, in any, opts ...form.UpdateOption) error {
	v, err := Encode(in)
	if err != nil {
		return err
	}
	return c.SetValue(v, opts...)
}

// Patch encodes in and patches c with it. Zero-valued struct fields are
// patched too; use a map to patch a subset.
func Patch(c form.Control, in any, opts ...form.UpdateOption) error {
	v, err := Encode(in)
	if err != nil {
		return err
	}
	return c.PatchValue(v, opts...)
}

func describe(c form.Control) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "root"
}
