package formtree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/formtree/pkg/binding"
	"github.com/aretw0/formtree/pkg/definition"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/registry"
	"github.com/aretw0/formtree/pkg/snapshot"
)

// Form is the high-level entry point for the formtree library.
// It wraps a control tree built from a definition and provides a simplified
// API for consumers.
type Form struct {
	root form.Control
	zone *form.Zone
}

type config struct {
	registry *registry.Registry
	zone     *form.Zone
	logger   *slog.Logger
	hooks    []form.Hooks
}

// Option defines a functional option for configuring a Form.
type Option func(*config)

// WithRegistry resolves validator names through reg instead of registry.Builtin().
func WithRegistry(reg *registry.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithZone builds the form in z. WithLogger and WithHooks are ignored when a
// zone is given, since they configure the zone New creates.
func WithZone(z *form.Zone) Option {
	return func(c *config) {
		c.zone = z
	}
}

// WithLogger sets the logger of the zone New creates.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks on the zone New creates.
// Several calls chain their hooks.
func WithHooks(hooks form.Hooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks)
	}
}

// New builds a Form from a parsed definition. Unless WithZone is given, every
// Form gets its own zone.
func New(def *definition.Definition, opts ...Option) (*Form, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	zone := cfg.zone
	if zone == nil {
		var zoneOpts []form.ZoneOption
		if cfg.logger != nil {
			zoneOpts = append(zoneOpts, form.WithLogger(cfg.logger))
		}
		if len(cfg.hooks) > 0 {
			zoneOpts = append(zoneOpts, form.WithHooks(form.ChainHooks(cfg.hooks...)))
		}
		zone = form.NewZone(zoneOpts...)
	}

	root, err := definition.NewBuilder(cfg.registry, definition.WithZone(zone)).Build(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	return &Form{root: root, zone: zone}, nil
}

// Load reads a YAML or JSON definition file and builds it.
func Load(path string, opts ...Option) (*Form, error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

// Parse decodes a definition document and builds it.
func Parse(data []byte, format definition.Format, opts ...Option) (*Form, error) {
	def, err := definition.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

// Root returns the root control.
func (f *Form) Root() form.Control {
	return f.root
}

// Zone returns the zone the form lives in.
func (f *Form) Zone() *form.Zone {
	return f.zone
}

// Get resolves a dotted path; the empty path is the root.
func (f *Form) Get(path string) (form.Control, error) {
	if path == "" {
		return f.root, nil
	}
	coll, ok := f.root.(form.Collection)
	if !ok {
		return nil, &form.PathError{Path: path, Segment: path, Err: form.ErrControlNotFound}
	}
	return coll.Get(path)
}

// Settle waits for pending async validation and returns the root status.
func (f *Form) Settle(ctx context.Context) (form.Status, error) {
	return form.Settle(ctx, f.root)
}

// Snapshot copies the current tree.
func (f *Form) Snapshot() snapshot.Node {
	return snapshot.Take(f.root)
}

// Decode copies the form value into out. See binding.Decode.
func (f *Form) Decode(out any) error {
	return binding.Decode(f.root, out)
}

// Set replaces the form value with in, a struct, map or slice.
func (f *Form) Set(in any, opts ...form.UpdateOption) error {
	return binding.Set(f.root, in, opts...)
}

// Patch updates the parts of the form value present in in.
func (f *Form) Patch(in any, opts ...form.UpdateOption) error {
	return binding.Patch(f.root, in, opts...)
}

// Close disposes the tree; pending async runs are abandoned.
func (f *Form) Close() {
	f.root.Dispose()
}
