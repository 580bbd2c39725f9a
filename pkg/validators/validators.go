package validators

import (
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/aretw0/formtree/pkg/form"
)

// Error codes produced by this package.
const (
	CodeRequired  = "required"
	CodeMinLength = "minlength"
	CodeMaxLength = "maxlength"
	CodePattern   = "pattern"
	CodeMin       = "min"
	CodeMax       = "max"
	CodeEmail     = "email"
)

// LengthError is the payload of CodeMinLength and CodeMaxLength.
type LengthError struct {
	Required int `json:"required" yaml:"required"`
	Actual   int `json:"actual" yaml:"actual"`
}

// BoundError is the payload of CodeMin and CodeMax.
type BoundError struct {
	Bound  float64 `json:"bound" yaml:"bound"`
	Actual float64 `json:"actual" yaml:"actual"`
}

// PatternError is the payload of CodePattern.
type PatternError struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Actual  string `json:"actual" yaml:"actual"`
}

// emailPattern wants one @, no spaces and a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Required fails on nil, empty strings and empty slices or maps.
func Required() form.Validator {
	return func(c form.Control) form.ValidationErrors {
		if IsEmpty(c.Value()) {
			return form.ValidationErrors{CodeRequired: true}
		}
		return nil
	}
}

// RequiredTrue fails unless the value is the boolean true.
func RequiredTrue() form.Validator {
	return func(c form.Control) form.ValidationErrors {
		if v, ok := c.Value().(bool); !ok || !v {
			return form.ValidationErrors{CodeRequired: true}
		}
		return nil
	}
}

// MinLength fails when a non-empty string, slice or map is shorter than n.
// Strings are measured in runes.
func MinLength(n int) form.Validator {
	return func(c form.Control) form.ValidationErrors {
		l, ok := length(c.Value())
		if !ok || l == 0 || l >= n {
			return nil
		}
		return form.ValidationErrors{CodeMinLength: LengthError{Required: n, Actual: l}}
	}
}

// MaxLength fails when a string, slice or map is longer than n.
func MaxLength(n int) form.Validator {
	return func(c form.Control) form.ValidationErrors {
		l, ok := length(c.Value())
		if !ok || l <= n {
			return nil
		}
		return form.ValidationErrors{CodeMaxLength: LengthError{Required: n, Actual: l}}
	}
}

// Pattern fails when a non-empty string does not match re. The expression is
// anchored on both ends.
func Pattern(re string) (form.Validator, error) {
	compiled, err := regexp.Compile(`^(?:` + re + `)$`)
	if err != nil {
		return nil, err
	}
	return func(c form.Control) form.ValidationErrors {
		s, ok := c.Value().(string)
		if !ok || s == "" || compiled.MatchString(s) {
			return nil
		}
		return form.ValidationErrors{CodePattern: PatternError{Pattern: re, Actual: s}}
	}, nil
}

// MustPattern is like Pattern but panics on an invalid expression.
func MustPattern(re string) form.Validator {
	v, err := Pattern(re)
	if err != nil {
		panic(err)
	}
	return v
}

// Email fails when a non-empty string does not look like an address.
func Email() form.Validator {
	return func(c form.Control) form.ValidationErrors {
		s, ok := c.Value().(string)
		if !ok || s == "" || emailPattern.MatchString(s) {
			return nil
		}
		return form.ValidationErrors{CodeEmail: true}
	}
}

// Min fails when a numeric value is below bound. Non-numeric values pass.
func Min(bound float64) form.Validator {
	return func(c form.Control) form.ValidationErrors {
		n, ok := number(c.Value())
		if !ok || n >= bound {
			return nil
		}
		return form.ValidationErrors{CodeMin: BoundError{Bound: bound, Actual: n}}
	}
}

// Max fails when a numeric value is above bound. Non-numeric values pass.
func Max(bound float64) form.Validator {
	return func(c form.Control) form.ValidationErrors {
		n, ok := number(c.Value())
		if !ok || n <= bound {
			return nil
		}
		return form.ValidationErrors{CodeMax: BoundError{Bound: bound, Actual: n}}
	}
}

// IsEmpty reports whether v counts as "no value".
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	l, ok := length(v)
	return ok && l == 0
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
