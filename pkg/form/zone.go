package form

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/formtree/internal/logging"
)

// Hooks observe the validation pipeline of every control in a zone.
// They run inside the zone and must not mutate the tree.
type Hooks struct {
	OnRecompute      func(c Control, status Status)
	OnAsyncStart     func(c Control)
	OnAsyncApplied   func(c Control, errs ValidationErrors, elapsed time.Duration)
	OnAsyncAbandoned func(c Control)
}

// ChainHooks returns hooks that call each of the given hooks in order.
func ChainHooks(all ...Hooks) Hooks {
	return Hooks{
		OnRecompute: func(c Control, s Status) {
			for _, h := range all {
				if h.OnRecompute != nil {
					h.OnRecompute(c, s)
				}
			}
		},
		OnAsyncStart: func(c Control) {
			for _, h := range all {
				if h.OnAsyncStart != nil {
					h.OnAsyncStart(c)
				}
			}
		},
		OnAsyncApplied: func(c Control, errs ValidationErrors, elapsed time.Duration) {
			for _, h := range all {
				if h.OnAsyncApplied != nil {
					h.OnAsyncApplied(c, errs, elapsed)
				}
			}
		},
		OnAsyncAbandoned: func(c Control) {
			for _, h := range all {
				if h.OnAsyncAbandoned != nil {
					h.OnAsyncAbandoned(c)
				}
			}
		},
	}
}

// Zone is the scheduling domain shared by every control of a tree.
//
// Each exported mutator, debounce timer and async completion runs inside the
// zone, one at a time. Stream notifications produced while inside are queued and
// delivered once the zone is released, in emission order and by one goroutine at
// a time, so subscribers may mutate the tree themselves.
//
// Getters do not enter the zone. Reading a tree from a goroutine other than
// the one driving it, while async validation may complete, must go through Do.
type Zone struct {
	mu       sync.Mutex
	queue    []func()
	draining bool

	logger *slog.Logger
	hooks  Hooks
}

// ZoneOption configures a Zone.
type ZoneOption func(*Zone)

// WithLogger sets the zone's logger.
func WithLogger(logger *slog.Logger) ZoneOption {
	return func(z *Zone) {
		if logger != nil {
			z.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) ZoneOption {
	return func(z *Zone) {
		z.hooks = hooks
	}
}

// NewZone creates a zone.
func NewZone(opts ...ZoneOption) *Zone {
	z := &Zone{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

var defaultZone = NewZone()

// DefaultZone returns the process-wide zone used by controls created without WithZone.
func DefaultZone() *Zone { return defaultZone }

// Logger returns the zone's logger.
func (z *Zone) Logger() *slog.Logger { return z.logger }

// Do runs fn inside the zone and then delivers queued notifications.
// It must not be called from a validator or hook, which already run inside.
func (z *Zone) Do(fn func()) {
	z.mu.Lock()
	defer z.release()
	fn()
}

func (z *Zone) doErr(fn func() error) error {
	var err error
	z.Do(func() { err = fn() })
	return err
}

// notify queues a delivery. Caller must be inside the zone.
func (z *Zone) notify(fn func()) {
	z.queue = append(z.queue, fn)
}

// release unlocks the zone. The first goroutine to release drains the queue;
// releases happening while it drains leave their notifications to it.
func (z *Zone) release() {
	if z.draining {
		z.mu.Unlock()
		return
	}
	z.draining = true
	for len(z.queue) > 0 {
		batch := z.queue
		z.queue = nil
		z.mu.Unlock()
		z.deliver(batch)
		z.mu.Lock()
	}
	z.draining = false
	z.mu.Unlock()
}

func (z *Zone) deliver(batch []func()) {
	defer func() {
		if r := recover(); r != nil {
			z.mu.Lock()
			z.draining = false
			z.queue = nil
			z.mu.Unlock()
			panic(r)
		}
	}()
	for _, fn := range batch {
		fn()
	}
}

func (z *Zone) recomputed(c Control, s Status) {
	if z.hooks.OnRecompute != nil {
		z.hooks.OnRecompute(c, s)
	}
}

func (z *Zone) asyncStarted(c Control) {
	if z.hooks.OnAsyncStart != nil {
		z.hooks.OnAsyncStart(c)
	}
}

func (z *Zone) asyncApplied(c Control, errs ValidationErrors, elapsed time.Duration) {
	if z.hooks.OnAsyncApplied != nil {
		z.hooks.OnAsyncApplied(c, errs, elapsed)
	}
}

func (z *Zone) asyncAbandoned(c Control) {
	if z.hooks.OnAsyncAbandoned != nil {
		z.hooks.OnAsyncAbandoned(c)
	}
}
