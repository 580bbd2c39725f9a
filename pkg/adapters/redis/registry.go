package redis

import (
	"errors"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/registry"
)

var errMissingSet = errors.New("set is required")

type setArgs struct {
	Set string `mapstructure:"set"`
}

// Register adds the "unique" and "member" async validators to reg.
// Both take a single "set" argument.
func (c *Checker) Register(reg *registry.Registry) {
	reg.RegisterAsync("unique", c.factory(c.Unique))
	reg.RegisterAsync("member", c.factory(c.Member))
}

func (c *Checker) factory(build func(set string) form.AsyncValidator) registry.AsyncFactory {
	return func(args map[string]any) (form.AsyncValidator, error) {
		var a setArgs
		if err := registry.DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Set == "" {
			return nil, errMissingSet
		}
		return build(a.Set), nil
	}
}
