package form

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/formtree/pkg/broadcast"
)

// ErrDuplicateKey is returned when adding a child under a key already in use.
var ErrDuplicateKey = errors.New("duplicate control key")

// Group is a composite whose children are addressed by name.
// Its value is a map[string]any of its enabled children's values.
type Group struct {
	node

	keys     []string
	controls map[string]Control
	changes  *broadcast.Stream[[]Child]
}

var _ Collection = (*Group)(nil)

// NewGroup creates a group owning controls. Keys are ordered alphabetically;
// controls added later keep insertion order.
func NewGroup(controls map[string]Control, opts ...Option) (*Group, error) {
	cfg := newConfig(opts)
	g := &Group{
		controls: make(map[string]Control, len(controls)),
		changes:  broadcast.New[[]Child](),
	}
	g.init(g, cfg)

	err := cfg.zone.doErr(func() error {
		keys := slices.Sorted(maps.Keys(controls))
		for _, key := range keys {
			if err := checkAdoptable(g, controls[key]); err != nil {
				g.unlinkAll()
				return fmt.Errorf("control %q: %w", key, err)
			}
			g.link(key, controls[key])
		}
		if cfg.disabled {
			for _, c := range g.childControls() {
				c.base().disable(initialPass)
			}
		}
		g.recompute(initialPass)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// MustGroup is like NewGroup but panics on error. It is meant for literals.
func MustGroup(controls map[string]Control, opts ...Option) *Group {
	g, err := NewGroup(controls, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Keys returns the child names in order.
func (g *Group) Keys() []string { return slices.Clone(g.keys) }

// Contains reports whether a child is registered under name.
func (g *Group) Contains(name string) bool {
	_, ok := g.controls[name]
	return ok
}

// Children lists the children in key order.
func (g *Group) Children() []Child {
	out := make([]Child, len(g.keys))
	for i, k := range g.keys {
		out[i] = Child{Key: k, Control: g.controls[k]}
	}
	return out
}

func (g *Group) CollectionChanges() *broadcast.Stream[[]Child] { return g.changes }

// Get resolves a dotted path such as "address.street" or "items.0.name".
func (g *Group) Get(path string) (Control, error) {
	return resolve(g, path)
}

// Errors returns the group's own errors plus, for each enabled child with
// errors, the child's errors under its key. Own codes win over clashing keys.
func (g *Group) Errors() ValidationErrors {
	out := maps.Clone(g.errors)
	for _, k := range g.keys {
		c := g.controls[k]
		if c.Disabled() {
			continue
		}
		errs := c.Errors()
		if len(errs) == 0 {
			continue
		}
		if out == nil {
			out = make(ValidationErrors)
		}
		if _, clash := out[k]; !clash {
			out[k] = errs
		}
	}
	return out
}

// AddControl registers c under name.
func (g *Group) AddControl(name string, c Control, opts ...UpdateOption) error {
	return g.AddControls(map[string]Control{name: c}, opts...)
}

// AddControls registers every entry, in key order, and recomputes once.
// Nothing is added if any entry is rejected.
func (g *Group) AddControls(controls map[string]Control, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return g.zone.doErr(func() error {
		if g.disposed {
			return ErrDisposed
		}
		keys := slices.Sorted(maps.Keys(controls))
		for _, key := range keys {
			if _, exists := g.controls[key]; exists {
				return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
			}
			if err := checkAdoptable(g, controls[key]); err != nil {
				return fmt.Errorf("control %q: %w", key, err)
			}
		}
		seen := make(map[Control]bool, len(keys))
		for _, key := range keys {
			if seen[controls[key]] {
				return fmt.Errorf("control %q: %w", key, ErrAlreadyOwned)
			}
			seen[controls[key]] = true
		}
		for _, key := range keys {
			g.link(key, controls[key])
		}
		g.structureChanged(cfg)
		return nil
	})
}

// SetControl registers c under name, replacing and releasing any previous child.
func (g *Group) SetControl(name string, c Control, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return g.zone.doErr(func() error {
		if g.disposed {
			return ErrDisposed
		}
		old, exists := g.controls[name]
		if exists && old == c {
			return nil
		}
		if err := checkAdoptable(g, c); err != nil {
			return fmt.Errorf("control %q: %w", name, err)
		}
		if exists {
			old.base().parent = nil
			g.controls[name] = c
			c.base().parent = g
		} else {
			g.link(name, c)
		}
		g.structureChanged(cfg)
		return nil
	})
}

// RemoveControl releases the child registered under name.
func (g *Group) RemoveControl(name string, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return g.zone.doErr(func() error {
		if g.disposed {
			return ErrDisposed
		}
		c, ok := g.controls[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrChildNotPresent, name)
		}
		g.unlink(name, c)
		g.structureChanged(cfg)
		return nil
	})
}

func (g *Group) link(key string, c Control) {
	g.keys = append(g.keys, key)
	g.controls[key] = c
	c.base().parent = g
}

func (g *Group) unlink(key string, c Control) {
	c.base().parent = nil
	delete(g.controls, key)
	g.keys = slices.DeleteFunc(g.keys, func(k string) bool { return k == key })
}

func (g *Group) unlinkAll() {
	for _, k := range g.keys {
		g.controls[k].base().parent = nil
	}
	g.keys = nil
	clear(g.controls)
}

func (g *Group) structureChanged(cfg updateConfig) {
	g.recompute(cfg)
	announce(g.zone, g.changes, g.Children())
}

func (g *Group) child(segment string) (Control, error) {
	c, ok := g.controls[segment]
	if !ok {
		return nil, ErrControlNotFound
	}
	return c, nil
}

func (g *Group) keyOf(c Control) (string, bool) {
	for _, k := range g.keys {
		if g.controls[k] == c {
			return k, true
		}
	}
	return "", false
}

func (g *Group) detach(c Control, cfg updateConfig) bool {
	key, ok := g.keyOf(c)
	if !ok {
		return false
	}
	g.unlink(key, c)
	g.structureChanged(cfg)
	return true
}

// reduceValue collects enabled children, or all of them when the group is disabled.
func (g *Group) reduceValue() any {
	all := g.aggregateDisabled()
	out := make(map[string]any, len(g.keys))
	for _, k := range g.keys {
		c := g.controls[k]
		if all || c.Enabled() {
			out[k] = c.Value()
		}
	}
	return out
}

// aggregateDisabled: disabled iff every child is, or by flag when empty.
func (g *Group) aggregateDisabled() bool {
	if len(g.keys) == 0 {
		return g.disabled
	}
	for _, k := range g.keys {
		if g.controls[k].Enabled() {
			return false
		}
	}
	return true
}

func (g *Group) childControls() []Control {
	out := make([]Control, len(g.keys))
	for i, k := range g.keys {
		out[i] = g.controls[k]
	}
	return out
}

// setValue pushes every key; keys missing from value push nil.
func (g *Group) setValue(value any, cfg updateConfig) error {
	m, ok := toMap(value)
	if !ok {
		return fmt.Errorf("%w: group expects map[string]any, got %T", ErrValueType, value)
	}
	var firstErr error
	for _, k := range g.keys {
		if err := g.controls[k].base().self.setValue(m[k], cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", k, err)
		}
	}
	g.recompute(cfg)
	return firstErr
}

// patchValue pushes only keys present in value; unknown keys are ignored.
func (g *Group) patchValue(value any, cfg updateConfig) error {
	m, ok := toMap(value)
	if !ok {
		return fmt.Errorf("%w: group expects map[string]any, got %T", ErrValueType, value)
	}
	var firstErr error
	for _, k := range g.keys {
		v, present := m[k]
		if !present {
			continue
		}
		if err := g.controls[k].base().self.patchValue(v, cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", k, err)
		}
	}
	g.recompute(cfg)
	return firstErr
}

func (g *Group) reset(value any, cfg updateConfig) error {
	m, ok := toMap(value)
	if !ok {
		return fmt.Errorf("%w: group expects map[string]any, got %T", ErrValueType, value)
	}
	var firstErr error
	for _, k := range g.keys {
		if err := g.controls[k].base().self.reset(m[k], cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", k, err)
		}
	}
	g.resetFlags(cfg)
	g.recompute(cfg)
	return firstErr
}

func (g *Group) closeStreams() {
	g.closeBaseStreams()
	g.changes.Close()
}
