package form

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/aretw0/formtree/pkg/broadcast"
)

// Array is a composite whose children are addressed by position.
// Its value is a []any of its enabled children's values, in order.
//
// SetValue assigns element i to child i. A shorter input leaves the surplus
// children with their prior values; a nil input clears every child.
type Array struct {
	node

	items       []Control
	itemOptions []Option
	changes     *broadcast.Stream[[]Child]
}

var _ Collection = (*Array)(nil)

// NewArray creates an array owning items.
func NewArray(items []Control, opts ...Option) (*Array, error) {
	cfg := newConfig(opts)
	a := &Array{
		itemOptions: cfg.itemOptions,
		changes:     broadcast.New[[]Child](),
	}
	a.init(a, cfg)

	err := cfg.zone.doErr(func() error {
		for i, c := range items {
			if err := checkAdoptable(a, c); err != nil {
				a.unlinkAll()
				return fmt.Errorf("item %d: %w", i, err)
			}
			a.items = append(a.items, c)
			c.base().parent = a
		}
		if cfg.disabled {
			for _, c := range a.items {
				c.base().disable(initialPass)
			}
		}
		a.recompute(initialPass)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// MustArray is like NewArray but panics on error.
func MustArray(items []Control, opts ...Option) *Array {
	a, err := NewArray(items, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of children, enabled or not.
func (a *Array) Len() int { return len(a.items) }

// At returns the child at index.
func (a *Array) At(index int) (Control, error) {
	if index < 0 || index >= len(a.items) {
		return nil, fmt.Errorf("%w: index %d", ErrControlNotFound, index)
	}
	return a.items[index], nil
}

// Contains reports whether key is a valid index.
func (a *Array) Contains(key string) bool {
	_, err := a.child(key)
	return err == nil
}

// Children lists the children with their indexes as keys.
func (a *Array) Children() []Child {
	out := make([]Child, len(a.items))
	for i, c := range a.items {
		out[i] = Child{Key: strconv.Itoa(i), Control: c}
	}
	return out
}

func (a *Array) CollectionChanges() *broadcast.Stream[[]Child] { return a.changes }

// Get resolves a dotted path such as "0.name".
func (a *Array) Get(path string) (Control, error) {
	return resolve(a, path)
}

// Errors returns the array's own errors plus the errors of each enabled child
// under its index.
func (a *Array) Errors() ValidationErrors {
	out := maps.Clone(a.errors)
	for i, c := range a.items {
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
		key := strconv.Itoa(i)
		if _, clash := out[key]; !clash {
			out[key] = errs
		}
	}
	return out
}

// Insert places c at index, shifting later children.
func (a *Array) Insert(index int, c Control, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return a.zone.doErr(func() error {
		if a.disposed {
			return ErrDisposed
		}
		if index < 0 || index > len(a.items) {
			return fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, index, len(a.items))
		}
		if err := checkAdoptable(a, c); err != nil {
			return err
		}
		a.items = slices.Insert(a.items, index, c)
		c.base().parent = a
		a.structureChanged(cfg)
		return nil
	})
}

// Push appends c.
func (a *Array) Push(c Control, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return a.zone.doErr(func() error {
		if a.disposed {
			return ErrDisposed
		}
		if err := checkAdoptable(a, c); err != nil {
			return err
		}
		a.items = append(a.items, c)
		c.base().parent = a
		a.structureChanged(cfg)
		return nil
	})
}

// RemoveAt releases the child at index.
func (a *Array) RemoveAt(index int, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return a.zone.doErr(func() error {
		if a.disposed {
			return ErrDisposed
		}
		if index < 0 || index >= len(a.items) {
			return fmt.Errorf("%w: remove at %d of %d", ErrIndexOutOfRange, index, len(a.items))
		}
		a.unlinkAt(index)
		a.structureChanged(cfg)
		return nil
	})
}

// Remove releases c.
func (a *Array) Remove(c Control, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return a.zone.doErr(func() error {
		if a.disposed {
			return ErrDisposed
		}
		if !a.detach(c, cfg) {
			return ErrChildNotPresent
		}
		return nil
	})
}

// Clear releases every child.
func (a *Array) Clear(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	a.zone.Do(func() {
		if !a.live("Clear") {
			return
		}
		a.unlinkAll()
		a.structureChanged(cfg)
	})
}

func (a *Array) unlinkAt(index int) {
	a.items[index].base().parent = nil
	a.items = slices.Delete(a.items, index, index+1)
}

func (a *Array) unlinkAll() {
	for _, c := range a.items {
		c.base().parent = nil
	}
	a.items = nil
}

func (a *Array) structureChanged(cfg updateConfig) {
	a.recompute(cfg)
	announce(a.zone, a.changes, a.Children())
}

func (a *Array) child(segment string) (Control, error) {
	index, ok := parseIndex(segment)
	if !ok {
		return nil, ErrInvalidIndex
	}
	if index >= len(a.items) {
		return nil, ErrControlNotFound
	}
	return a.items[index], nil
}

// parseIndex accepts non-negative base-10 integers only.
func parseIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(segment)
	if err != nil {
		// Well formed but beyond any child.
		return math.MaxInt, true
	}
	return index, true
}

func (a *Array) keyOf(c Control) (string, bool) {
	i := slices.Index(a.items, c)
	if i < 0 {
		return "", false
	}
	return strconv.Itoa(i), true
}

func (a *Array) detach(c Control, cfg updateConfig) bool {
	i := slices.Index(a.items, c)
	if i < 0 {
		return false
	}
	a.unlinkAt(i)
	a.structureChanged(cfg)
	return true
}

func (a *Array) reduceValue() any {
	all := a.aggregateDisabled()
	out := make([]any, 0, len(a.items))
	for _, c := range a.items {
		if all || c.Enabled() {
			out = append(out, c.Value())
		}
	}
	return out
}

func (a *Array) aggregateDisabled() bool {
	if len(a.items) == 0 {
		return a.disabled
	}
	for _, c := range a.items {
		if c.Enabled() {
			return false
		}
	}
	return true
}

func (a *Array) childControls() []Control { return slices.Clone(a.items) }

// setValue pushes the element at each existing position. A nil value clears
// every child; a shorter value leaves the surplus children untouched; a longer
// one appends new Fields for the extra elements.
func (a *Array) setValue(value any, cfg updateConfig) error {
	values, ok := toSlice(value)
	if !ok {
		return fmt.Errorf("%w: array expects a slice, got %T", ErrValueType, value)
	}
	var firstErr error
	for i, c := range a.items {
		var v any
		switch {
		case values == nil:
		case i < len(values):
			v = values[i]
		default:
			continue
		}
		if err := c.base().self.setValue(v, cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%d: %w", i, err)
		}
	}

	grown := false
	if len(values) > len(a.items) {
		itemCfg := newConfig(a.itemOptions)
		itemCfg.zone = a.zone
		// New items join a disabled array disabled.
		if a.aggregateDisabled() {
			itemCfg.disabled = true
		}
		pass := updateConfig{onlySelf: true, silent: true, initial: !cfg.silent}
		for _, v := range values[len(a.items):] {
			f := newField(v, itemCfg, pass)
			a.items = append(a.items, f)
			f.parent = a
		}
		grown = true
	}

	a.recompute(cfg)
	if grown {
		announce(a.zone, a.changes, a.Children())
	}
	return firstErr
}

// patchValue pushes only positions present in both the array and value.
func (a *Array) patchValue(value any, cfg updateConfig) error {
	values, ok := toSlice(value)
	if !ok {
		return fmt.Errorf("%w: array expects a slice, got %T", ErrValueType, value)
	}
	var firstErr error
	for i := 0; i < len(a.items) && i < len(values); i++ {
		if err := a.items[i].base().self.patchValue(values[i], cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%d: %w", i, err)
		}
	}
	a.recompute(cfg)
	return firstErr
}

func (a *Array) reset(value any, cfg updateConfig) error {
	values, ok := toSlice(value)
	if !ok {
		return fmt.Errorf("%w: array expects a slice, got %T", ErrValueType, value)
	}
	var firstErr error
	for i, c := range a.items {
		var v any
		if i < len(values) {
			v = values[i]
		}
		if err := c.base().self.reset(v, cfg.self()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%d: %w", i, err)
		}
	}
	a.resetFlags(cfg)
	a.recompute(cfg)
	return firstErr
}

func (a *Array) closeStreams() {
	a.closeBaseStreams()
	a.changes.Close()
}
