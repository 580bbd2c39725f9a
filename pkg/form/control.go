package form

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/formtree/pkg/broadcast"
)

// Control is a node of the form tree: a Field, a Group or an Array.
//
// Getters read the node directly and are safe from the goroutine that drives
// the tree, from validators and from subscribers. Mutators enter the node's
// Zone and end by recomputing the node's value and status.
type Control interface {
	// Value is the node's current value. For composites it is an aggregate that
	// is rebuilt on every recompute and must not be modified.
	Value() any
	Status() Status
	Valid() bool
	Invalid() bool
	Pending() bool
	Enabled() bool
	Disabled() bool
	// Errors is the error set exposed to callers. Composites add the errors of
	// their enabled children, nested under each child's key.
	Errors() ValidationErrors
	// OwnErrors is the node's own error set, the one driving its status.
	OwnErrors() ValidationErrors
	Pristine() bool
	Dirty() bool
	Touched() bool
	Untouched() bool

	Parent() Collection
	Root() Control
	Path() string
	Zone() *Zone
	Disposed() bool

	ValueChanges() *broadcast.Stream[any]
	StatusChanges() *broadcast.Stream[Status]
	TouchChanges() *broadcast.Stream[bool]

	SetValue(value any, opts ...UpdateOption) error
	PatchValue(value any, opts ...UpdateOption) error
	Reset(value any, opts ...UpdateOption) error

	SetValidators(validators ...Validator)
	AddValidators(validators ...Validator)
	ClearValidators()
	SetAsyncValidators(validators ...AsyncValidator)
	ClearAsyncValidators()

	MarkAsDirty(opts ...UpdateOption)
	MarkAsPristine(opts ...UpdateOption)
	MarkAsTouched(opts ...UpdateOption)
	MarkAsUntouched(opts ...UpdateOption)
	MarkAsDisabled(opts ...UpdateOption)
	MarkAsEnabled(opts ...UpdateOption)

	SetErrors(errs ValidationErrors, opts ...UpdateOption)
	RemoveError(code string, opts ...UpdateOption)
	HasError(code string, path ...string) bool
	GetError(code string, path ...string) (any, error)

	UpdateValueAndValidity(opts ...UpdateOption)
	Dispose()

	base() *node
}

// impl is what each control kind adds to node.
type impl interface {
	Control
	reduceValue() any
	aggregateDisabled() bool
	childControls() []Control
	setValue(value any, cfg updateConfig) error
	patchValue(value any, cfg updateConfig) error
	reset(value any, cfg updateConfig) error
	closeStreams()
}

// node holds the state shared by every control kind.
type node struct {
	self impl
	zone *Zone

	value           any
	status          Status
	errors          ValidationErrors
	validators      []Validator
	asyncValidators []AsyncValidator
	debounce        time.Duration
	pristine        bool
	touched         bool
	disabled        bool
	disposed        bool

	parent Collection
	async  asyncRun

	valueChanges  *broadcast.Stream[any]
	statusChanges *broadcast.Stream[Status]
	touchChanges  *broadcast.Stream[bool]
}

func (n *node) init(self impl, cfg config) {
	n.self = self
	n.zone = cfg.zone
	n.validators = slices.Clone(cfg.validators)
	n.asyncValidators = slices.Clone(cfg.asyncValidators)
	n.debounce = cfg.debounce
	n.pristine = true
	n.touched = cfg.touched
	n.disabled = cfg.disabled
	n.status = Valid
	n.valueChanges = broadcast.New[any]()
	n.statusChanges = broadcast.New[Status]()
	n.touchChanges = broadcast.New[bool]()
}

func (n *node) base() *node { return n }

func (n *node) Value() any      { return n.value }
func (n *node) Status() Status  { return n.status }
func (n *node) Valid() bool     { return n.status == Valid }
func (n *node) Invalid() bool   { return n.status == Invalid }
func (n *node) Pending() bool   { return n.status == Pending }
func (n *node) Enabled() bool   { return n.status != Disabled }
func (n *node) Disabled() bool  { return n.status == Disabled }
func (n *node) Pristine() bool  { return n.pristine }
func (n *node) Dirty() bool     { return !n.pristine }
func (n *node) Touched() bool   { return n.touched }
func (n *node) Untouched() bool { return !n.touched }
func (n *node) Zone() *Zone     { return n.zone }
func (n *node) Disposed() bool  { return n.disposed }

func (n *node) Errors() ValidationErrors    { return maps.Clone(n.errors) }
func (n *node) OwnErrors() ValidationErrors { return maps.Clone(n.errors) }

func (n *node) Parent() Collection { return n.parent }

func (n *node) Root() Control {
	var cur Control = n.self
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// Path returns the dotted address of the node relative to its root.
func (n *node) Path() string {
	var segments []string
	cur := n
	for cur.parent != nil {
		key, _ := cur.parent.keyOf(cur.self)
		segments = append(segments, key)
		cur = cur.parent.base()
	}
	slices.Reverse(segments)
	return strings.Join(segments, ".")
}

func (n *node) ValueChanges() *broadcast.Stream[any]     { return n.valueChanges }
func (n *node) StatusChanges() *broadcast.Stream[Status] { return n.statusChanges }
func (n *node) TouchChanges() *broadcast.Stream[bool]    { return n.touchChanges }

// --- Entry points ---

// live reports whether n accepts mutations, logging the rejected operation.
func (n *node) live(op string) bool {
	if n.disposed {
		n.zone.logger.Debug("operation on disposed control ignored", "op", op)
		return false
	}
	return true
}

func (n *node) SetValue(value any, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return n.zone.doErr(func() error {
		if n.disposed {
			return ErrDisposed
		}
		return n.self.setValue(value, cfg)
	})
}

func (n *node) PatchValue(value any, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return n.zone.doErr(func() error {
		if n.disposed {
			return ErrDisposed
		}
		return n.self.patchValue(value, cfg)
	})
}

// Reset marks the subtree pristine and untouched and applies value (nil for absent).
func (n *node) Reset(value any, opts ...UpdateOption) error {
	cfg := newUpdateConfig(opts)
	return n.zone.doErr(func() error {
		if n.disposed {
			return ErrDisposed
		}
		return n.self.reset(value, cfg)
	})
}

func (n *node) SetValidators(validators ...Validator) {
	n.zone.Do(func() {
		if n.live("SetValidators") {
			n.validators = slices.Clone(validators)
			n.recompute(updateConfig{})
		}
	})
}

func (n *node) AddValidators(validators ...Validator) {
	n.zone.Do(func() {
		if n.live("AddValidators") {
			n.validators = append(n.validators, validators...)
			n.recompute(updateConfig{})
		}
	})
}

func (n *node) ClearValidators() {
	n.zone.Do(func() {
		if n.live("ClearValidators") {
			n.validators = nil
			n.recompute(updateConfig{})
		}
	})
}

func (n *node) SetAsyncValidators(validators ...AsyncValidator) {
	n.zone.Do(func() {
		if n.live("SetAsyncValidators") {
			n.asyncValidators = slices.Clone(validators)
			n.recompute(updateConfig{})
		}
	})
}

func (n *node) ClearAsyncValidators() {
	n.zone.Do(func() {
		if n.live("ClearAsyncValidators") {
			n.asyncValidators = nil
			n.recompute(updateConfig{})
		}
	})
}

func (n *node) MarkAsDirty(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsDirty") {
			n.markDirty(cfg)
		}
	})
}

func (n *node) MarkAsPristine(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsPristine") {
			n.markPristine(cfg)
		}
	})
}

func (n *node) MarkAsTouched(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsTouched") {
			n.markTouched(cfg)
		}
	})
}

func (n *node) MarkAsUntouched(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsUntouched") {
			n.markUntouched(cfg)
		}
	})
}

// MarkAllAsTouched marks the node and every descendant as touched.
func (n *node) MarkAllAsTouched(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAllAsTouched") {
			n.markAllTouched(cfg)
		}
	})
}

// MarkAsDisabled disables the node and all descendants, clearing their errors.
func (n *node) MarkAsDisabled(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsDisabled") {
			n.disable(cfg)
		}
	})
}

// MarkAsEnabled enables the node and all descendants and revalidates them.
func (n *node) MarkAsEnabled(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("MarkAsEnabled") {
			n.enable(cfg)
		}
	})
}

// SetErrors replaces the node's own errors and refreshes status up the tree
// without running validators or marking the node dirty.
func (n *node) SetErrors(errs ValidationErrors, opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("SetErrors") {
			n.setErrors(errs, cfg)
		}
	})
}

func (n *node) RemoveError(code string, opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if !n.live("RemoveError") || !n.errors.Has(code) {
			return
		}
		errs := maps.Clone(n.errors)
		delete(errs, code)
		n.setErrors(errs, cfg)
	})
}

// HasError reports whether the control at path (default: this one) has code
// in its own errors. An unresolvable path reports false.
func (n *node) HasError(code string, path ...string) bool {
	target, err := n.find(strings.Join(path, "."))
	if err != nil {
		return false
	}
	return target.base().errors.Has(code)
}

// GetError returns the payload of code on the control at path. A missing code
// yields nil; an unresolvable path yields a *PathError.
func (n *node) GetError(code string, path ...string) (any, error) {
	target, err := n.find(strings.Join(path, "."))
	if err != nil {
		return nil, err
	}
	return target.base().errors[code], nil
}

// UpdateValueAndValidity recomputes value, errors and status.
func (n *node) UpdateValueAndValidity(opts ...UpdateOption) {
	cfg := newUpdateConfig(opts)
	n.zone.Do(func() {
		if n.live("UpdateValueAndValidity") {
			n.recompute(cfg)
		}
	})
}

// Dispose detaches the node from its parent, disposes its descendants, abandons
// pending async validation and closes every stream.
func (n *node) Dispose() {
	n.zone.Do(func() {
		if n.disposed {
			return
		}
		if p := n.parent; p != nil {
			p.detach(n.self, updateConfig{})
		}
		n.dispose()
	})
}

// --- Internals, called inside the zone ---

func (n *node) find(path string) (Control, error) {
	if path == "" {
		return n.self, nil
	}
	return resolve(n.self, path)
}

// recompute derives value, errors and status, schedules async validation,
// emits, and walks up to the parent.
func (n *node) recompute(cfg updateConfig) {
	if n.disposed {
		return
	}
	n.cancelAsync()

	disabled := n.self.aggregateDisabled()
	if len(n.self.childControls()) > 0 {
		n.disabled = disabled
	}
	n.value = n.self.reduceValue()

	if disabled {
		n.errors = nil
		n.status = Disabled
	} else {
		n.errors = runValidators(n.validators, n.self)
		n.status = n.deriveStatus()
		if (n.status == Valid || n.status == Pending) && len(n.asyncValidators) > 0 {
			n.scheduleAsync(cfg)
		}
	}

	n.zone.recomputed(n.self, n.status)
	if !cfg.silent {
		n.emitValueAndStatus()
	}
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().recompute(cfg)
	}
}

// deriveStatus applies the status priority rule.
func (n *node) deriveStatus() Status {
	if n.self.aggregateDisabled() {
		return Disabled
	}
	if len(n.errors) > 0 {
		return Invalid
	}
	children := n.self.childControls()
	if n.async.active() || anyStatus(children, Pending) {
		return Pending
	}
	if anyStatus(children, Invalid) {
		return Invalid
	}
	return Valid
}

func anyStatus(children []Control, s Status) bool {
	for _, c := range children {
		if c.Status() == s {
			return true
		}
	}
	return false
}

// refreshStatus re-derives status without running validators.
func (n *node) refreshStatus(cfg updateConfig) {
	if n.disposed {
		return
	}
	n.status = n.deriveStatus()
	if !cfg.silent {
		s := n.status
		n.zone.notify(func() { n.statusChanges.Emit(s) })
	}
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().refreshStatus(cfg)
	}
}

func (n *node) setErrors(errs ValidationErrors, cfg updateConfig) {
	if len(errs) == 0 {
		n.errors = nil
	} else {
		n.errors = maps.Clone(errs)
	}
	n.refreshStatus(cfg)
}

func (n *node) emitValueAndStatus() {
	v, s := n.value, n.status
	n.zone.notify(func() {
		n.valueChanges.Emit(v)
		n.statusChanges.Emit(s)
	})
}

func (n *node) emitTouch(cfg updateConfig) {
	if cfg.silent {
		return
	}
	t := n.touched
	n.zone.notify(func() { n.touchChanges.Emit(t) })
}

func (n *node) markDirty(cfg updateConfig) {
	n.pristine = false
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().markDirty(cfg)
	}
}

func (n *node) markPristine(cfg updateConfig) {
	n.pristine = true
	for _, c := range n.self.childControls() {
		c.base().markPristine(cfg.self())
	}
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().updatePristine(cfg)
	}
}

// updatePristine makes a composite pristine iff no child is dirty.
func (n *node) updatePristine(cfg updateConfig) {
	pristine := true
	for _, c := range n.self.childControls() {
		if c.Dirty() {
			pristine = false
			break
		}
	}
	n.pristine = pristine
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().updatePristine(cfg)
	}
}

func (n *node) markTouched(cfg updateConfig) {
	n.touched = true
	n.emitTouch(cfg)
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().markTouched(cfg)
	}
}

func (n *node) markAllTouched(cfg updateConfig) {
	for _, c := range n.self.childControls() {
		c.base().markAllTouched(cfg.self())
	}
	n.markTouched(cfg)
}

func (n *node) markUntouched(cfg updateConfig) {
	n.touched = false
	for _, c := range n.self.childControls() {
		c.base().markUntouched(cfg.self())
	}
	n.emitTouch(cfg)
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().updateTouched(cfg)
	}
}

// updateTouched makes a composite touched iff any child is touched.
func (n *node) updateTouched(cfg updateConfig) {
	touched := false
	for _, c := range n.self.childControls() {
		if c.Touched() {
			touched = true
			break
		}
	}
	if touched != n.touched {
		n.touched = touched
		n.emitTouch(cfg)
	}
	if !cfg.onlySelf && n.parent != nil {
		n.parent.base().updateTouched(cfg)
	}
}

// resetFlags is the flag part of Reset; children reset themselves first.
func (n *node) resetFlags(cfg updateConfig) {
	n.pristine = true
	n.touched = false
	n.emitTouch(cfg)
	if !cfg.onlySelf && n.parent != nil {
		p := n.parent.base()
		p.updatePristine(cfg)
		p.updateTouched(cfg)
	}
}

// disable cascades to children first so the recompute sees their new state.
func (n *node) disable(cfg updateConfig) {
	n.disabled = true
	for _, c := range n.self.childControls() {
		c.base().disable(cfg.self())
	}
	n.recompute(cfg)
}

func (n *node) enable(cfg updateConfig) {
	n.disabled = false
	for _, c := range n.self.childControls() {
		c.base().enable(cfg.self())
	}
	n.recompute(cfg)
}

func (n *node) dispose() {
	if n.disposed {
		return
	}
	n.cancelAsync()
	n.disposed = true
	for _, c := range n.self.childControls() {
		cb := c.base()
		cb.parent = nil
		cb.dispose()
	}
	// Close after already queued notifications have been delivered.
	n.zone.notify(n.self.closeStreams)
}

func (n *node) closeBaseStreams() {
	n.valueChanges.Close()
	n.statusChanges.Close()
	n.touchChanges.Close()
}
