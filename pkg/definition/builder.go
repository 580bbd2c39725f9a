package definition

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/registry"
)

// Builder turns definitions into control trees.
type Builder struct {
	registry *registry.Registry
	zone     *form.Zone
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithZone places every built control in z instead of the default zone.
func WithZone(z *form.Zone) BuilderOption {
	return func(b *Builder) {
		b.zone = z
	}
}

// NewBuilder creates a builder resolving validators through reg.
// A nil reg means registry.Builtin().
func NewBuilder(reg *registry.Registry, opts ...BuilderOption) *Builder {
	if reg == nil {
		reg = registry.Builtin()
	}
	b := &Builder{registry: reg, zone: form.DefaultZone()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates def and creates the corresponding tree.
// On error, controls created so far are disposed.
func (b *Builder) Build(def *Definition) (form.Control, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return b.build(def, "")
}

func (b *Builder) build(def *Definition, path string) (form.Control, error) {
	opts, err := b.options(def, path)
	if err != nil {
		return nil, err
	}

	switch def.ResolvedKind() {
	case KindGroup:
		return b.buildGroup(def, path, opts)
	case KindArray:
		return b.buildArray(def, path, opts)
	default:
		return form.NewField(def.Value, opts...), nil
	}
}

func (b *Builder) buildGroup(def *Definition, path string, opts []form.Option) (form.Control, error) {
	children := make(map[string]form.Control, len(def.Controls))
	for _, key := range slices.Sorted(maps.Keys(def.Controls)) {
		c, err := b.build(def.Controls[key], join(path, key))
		if err != nil {
			disposeAll(slices.Collect(maps.Values(children)))
			return nil, err
		}
		children[key] = c
	}
	g, err := form.NewGroup(children, opts...)
	if err != nil {
		disposeAll(slices.Collect(maps.Values(children)))
		return nil, fmt.Errorf("%s: %w", orRoot(path), err)
	}
	if def.Value != nil {
		if err := g.PatchValue(def.Value, form.Silent()); err != nil {
			g.Dispose()
			return nil, fmt.Errorf("%s: value: %w", orRoot(path), err)
		}
	}
	return g, nil
}

func (b *Builder) buildArray(def *Definition, path string, opts []form.Option) (form.Control, error) {
	items := make([]form.Control, 0, len(def.Items))
	for i, item := range def.Items {
		c, err := b.build(item, join(path, fmt.Sprint(i)))
		if err != nil {
			disposeAll(items)
			return nil, err
		}
		items = append(items, c)
	}
	if def.Item != nil {
		itemOpts, err := b.options(def.Item, join(path, "item"))
		if err != nil {
			disposeAll(items)
			return nil, err
		}
		opts = append(opts, form.WithItemOptions(itemOpts...))
	}
	a, err := form.NewArray(items, opts...)
	if err != nil {
		disposeAll(items)
		return nil, fmt.Errorf("%s: %w", orRoot(path), err)
	}
	if def.Value != nil {
		if err := a.SetValue(def.Value, form.Silent()); err != nil {
			a.Dispose()
			return nil, fmt.Errorf("%s: value: %w", orRoot(path), err)
		}
	}
	return a, nil
}

// options translates the per-control settings of def.
func (b *Builder) options(def *Definition, path string) ([]form.Option, error) {
	opts := []form.Option{form.WithZone(b.zone)}

	for _, rule := range def.Validators {
		v, err := b.registry.Validator(rule.Name, rule.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", orRoot(path), err)
		}
		opts = append(opts, form.WithValidators(v))
	}
	for _, rule := range def.Async {
		v, err := b.registry.AsyncValidator(rule.Name, rule.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", orRoot(path), err)
		}
		opts = append(opts, form.WithAsyncValidators(v))
	}

	if def.Debounce != nil {
		opts = append(opts, form.WithDebounce(*def.Debounce))
	}
	if def.Disabled {
		opts = append(opts, form.WithDisabled(true))
	}
	if def.Touched {
		opts = append(opts, form.WithTouched(true))
	}
	if def.NonNullable {
		opts = append(opts, form.WithNonNullable())
	}
	return opts, nil
}

func disposeAll(controls []form.Control) {
	for _, c := range controls {
		c.Dispose()
	}
}

func orRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
