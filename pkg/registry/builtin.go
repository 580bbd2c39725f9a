package registry

import (
	"errors"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/validators"
)

var errMissingPattern = errors.New("pattern is required")

type lengthArgs struct {
	N int `mapstructure:"n"`
}

type boundArgs struct {
	Value float64 `mapstructure:"value"`
}

type patternArgs struct {
	Pattern string `mapstructure:"pattern"`
}

// Builtin returns a registry holding the validators of package validators:
//
//	required, requiredTrue, email   no arguments
//	minLength, maxLength            n
//	min, max                        value
//	pattern                         pattern
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("required", noArgs(validators.Required))
	r.Register("requiredTrue", noArgs(validators.RequiredTrue))
	r.Register("email", noArgs(validators.Email))
	r.Register("minLength", func(args map[string]any) (form.Validator, error) {
		var a lengthArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return validators.MinLength(a.N), nil
	})
	r.Register("maxLength", func(args map[string]any) (form.Validator, error) {
		var a lengthArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return validators.MaxLength(a.N), nil
	})
	r.Register("min", func(args map[string]any) (form.Validator, error) {
		var a boundArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return validators.Min(a.Value), nil
	})
	r.Register("max", func(args map[string]any) (form.Validator, error) {
		var a boundArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return validators.Max(a.Value), nil
	})
	r.Register("pattern", func(args map[string]any) (form.Validator, error) {
		var a patternArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Pattern == "" {
			return nil, errMissingPattern
		}
		return validators.Pattern(a.Pattern)
	})
	return r
}

func noArgs(build func() form.Validator) Factory {
	return func(args map[string]any) (form.Validator, error) {
		if err := DecodeArgs(args, &struct{}{}); err != nil {
			return nil, err
		}
		return build(), nil
	}
}
