package form

import "time"

// DefaultDebounce is the delay before asynchronous validation starts.
const DefaultDebounce = 250 * time.Millisecond

type config struct {
	zone            *Zone
	validators      []Validator
	asyncValidators []AsyncValidator
	debounce        time.Duration
	disabled        bool
	touched         bool
	nonNullable     bool
	itemOptions     []Option
}

func newConfig(opts []Option) config {
	cfg := config{
		zone:     defaultZone,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a control at construction.
type Option func(*config)

// WithZone places the control in z. Controls linked into one tree must share a zone.
func WithZone(z *Zone) Option {
	return func(c *config) {
		if z != nil {
			c.zone = z
		}
	}
}

// WithValidators sets the synchronous validators, run in order.
func WithValidators(validators ...Validator) Option {
	return func(c *config) {
		c.validators = append(c.validators, validators...)
	}
}

// WithAsyncValidators sets the asynchronous validators.
func WithAsyncValidators(validators ...AsyncValidator) Option {
	return func(c *config) {
		c.asyncValidators = append(c.asyncValidators, validators...)
	}
}

// WithDebounce sets the async validation delay. Negative values mean zero.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = max(d, 0)
	}
}

// WithDisabled sets the initial disabled flag. On composites it disables every child.
func WithDisabled(disabled bool) Option {
	return func(c *config) {
		c.disabled = disabled
	}
}

// WithTouched sets the initial touched flag.
func WithTouched(touched bool) Option {
	return func(c *config) {
		c.touched = touched
	}
}

// WithNonNullable makes Reset(nil) on a Field restore its initial value.
func WithNonNullable() Option {
	return func(c *config) {
		c.nonNullable = true
	}
}

// WithItemOptions sets the options of the Fields an Array creates when
// SetValue grows it. The zone is always the array's.
func WithItemOptions(opts ...Option) Option {
	return func(c *config) {
		c.itemOptions = append(c.itemOptions, opts...)
	}
}

type updateConfig struct {
	onlySelf bool
	silent   bool
	// initial marks a construction pass: it emits nothing itself, but the
	// result of any async run it schedules is still announced.
	initial bool
}

// initialPass is the update used when a control is built.
var initialPass = updateConfig{onlySelf: true, silent: true, initial: true}

// UpdateOption tunes a single mutation.
type UpdateOption func(*updateConfig)

// OnlySelf stops propagation to ancestors.
func OnlySelf() UpdateOption {
	return func(c *updateConfig) { c.onlySelf = true }
}

// Silent suppresses value and status notifications.
func Silent() UpdateOption {
	return func(c *updateConfig) { c.silent = true }
}

func newUpdateConfig(opts []UpdateOption) updateConfig {
	var cfg updateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// self returns cfg restricted to the current node, as used for cascades.
func (cfg updateConfig) self() updateConfig {
	return updateConfig{onlySelf: true, silent: cfg.silent, initial: cfg.initial}
}
