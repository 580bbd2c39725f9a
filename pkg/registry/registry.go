package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/mitchellh/mapstructure"
)

// ErrNotFound is returned when no factory is registered under a name.
var ErrNotFound = errors.New("validator not found")

// Factory builds a synchronous validator from definition arguments.
type Factory func(args map[string]any) (form.Validator, error)

// AsyncFactory builds an asynchronous validator from definition arguments.
type AsyncFactory func(args map[string]any) (form.AsyncValidator, error)

// Registry maps validator names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	async     map[string]AsyncFactory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		async:     make(map[string]AsyncFactory),
	}
}

// Register adds a synchronous validator factory.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// RegisterAsync adds an asynchronous validator factory.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) RegisterAsync(name string, fn AsyncFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.async[name] = fn
}

// Validator looks up a synchronous factory by name and builds a validator.
func (r *Registry) Validator(name string, args map[string]any) (form.Validator, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	v, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("validator %s: %w", name, err)
	}
	return v, nil
}

// AsyncValidator looks up an asynchronous factory by name and builds a validator.
func (r *Registry) AsyncValidator(name string, args map[string]any) (form.AsyncValidator, error) {
	r.mu.RLock()
	fn, ok := r.async[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: async %s", ErrNotFound, name)
	}
	v, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("async validator %s: %w", name, err)
	}
	return v, nil
}

// Names lists the registered synchronous and asynchronous names, sorted.
func (r *Registry) Names() (names, asyncNames []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names = slices.Sorted(maps.Keys(r.factories))
	asyncNames = slices.Sorted(maps.Keys(r.async))
	return names, asyncNames
}

// DecodeArgs decodes definition arguments into out, a pointer to a struct with
// mapstructure tags. Strings are converted to numbers and booleans as needed.
func DecodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
