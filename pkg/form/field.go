package form

import (
	"reflect"

	"github.com/aretw0/formtree/pkg/broadcast"
)

// Field is a leaf control holding a single user-entered value.
type Field struct {
	node

	initial      any
	nonNullable  bool
	focused      bool
	focusChanges *broadcast.Stream[bool]
}

var _ Control = (*Field)(nil)

// NewField creates a leaf with the given initial value and computes its status.
// Like every constructor it enters the zone, so it must not be called from a
// validator or hook.
func NewField(value any, opts ...Option) *Field {
	cfg := newConfig(opts)
	var f *Field
	cfg.zone.Do(func() { f = newField(value, cfg, initialPass) })
	return f
}

// newField builds a Field inside the zone. pass is its first recompute.
func newField(value any, cfg config, pass updateConfig) *Field {
	f := &Field{
		initial:      value,
		nonNullable:  cfg.nonNullable,
		focusChanges: broadcast.New[bool](),
	}
	f.init(f, cfg)
	f.value = value
	f.recompute(pass)
	return f
}

// Focused reports the focus state.
func (f *Field) Focused() bool { return f.focused }

// FocusChanges emits the focus state whenever it changes.
func (f *Field) FocusChanges() *broadcast.Stream[bool] { return f.focusChanges }

// Focus records that the rendering layer gave the field focus.
func (f *Field) Focus() {
	f.zone.Do(func() {
		if f.live("Focus") {
			f.setFocus(true)
		}
	})
}

// Blur records that the field lost focus, which marks it touched.
func (f *Field) Blur(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	f.zone.Do(func() {
		if !f.live("Blur") {
			return
		}
		f.setFocus(false)
		f.markTouched(cfg)
	})
}

func (f *Field) setFocus(focused bool) {
	if f.focused == focused {
		return
	}
	f.focused = focused
	f.zone.notify(func() { f.focusChanges.Emit(focused) })
}

func (f *Field) reduceValue() any        { return f.value }
func (f *Field) aggregateDisabled() bool { return f.disabled }
func (f *Field) childControls() []Control {
	return nil
}

// setValue is the only de-duplicating mutation: an equal value changes nothing.
func (f *Field) setValue(value any, cfg updateConfig) error {
	if reflect.DeepEqual(f.value, value) {
		return nil
	}
	f.value = value
	f.recompute(cfg)
	return nil
}

func (f *Field) patchValue(value any, cfg updateConfig) error {
	return f.setValue(value, cfg)
}

func (f *Field) reset(value any, cfg updateConfig) error {
	if value == nil && f.nonNullable {
		value = f.initial
	}
	f.value = value
	f.resetFlags(cfg)
	f.recompute(cfg)
	return nil
}

func (f *Field) closeStreams() {
	f.closeBaseStreams()
	f.focusChanges.Close()
}
