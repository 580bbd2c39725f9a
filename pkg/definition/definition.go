package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Kind selects the control built for a definition.
type Kind string

const (
	KindField Kind = "field"
	KindGroup Kind = "group"
	KindArray Kind = "array"
)

var (
	// ErrInvalidDefinition is returned for structurally invalid definitions.
	ErrInvalidDefinition = errors.New("invalid form definition")
	// ErrUnknownFormat is returned for files that are neither YAML nor JSON.
	ErrUnknownFormat = errors.New("unknown definition format")
)

// Format is the serialization of a definition document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Rule references a registered validator and its arguments.
type Rule struct {
	Name string         `yaml:"name" json:"name" mapstructure:"name"`
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty" mapstructure:"args"`
}

// Definition describes a control and, for composites, its children.
//
// Kind may be omitted: a definition with controls is a group, one with items or
// an item template is an array, anything else is a field.
type Definition struct {
	Kind        Kind                   `yaml:"kind,omitempty" json:"kind,omitempty" mapstructure:"kind"`
	Value       any                    `yaml:"value,omitempty" json:"value,omitempty" mapstructure:"value"`
	Disabled    bool                   `yaml:"disabled,omitempty" json:"disabled,omitempty" mapstructure:"disabled"`
	Touched     bool                   `yaml:"touched,omitempty" json:"touched,omitempty" mapstructure:"touched"`
	NonNullable bool                   `yaml:"nonNullable,omitempty" json:"nonNullable,omitempty" mapstructure:"nonNullable"`
	Debounce    *time.Duration         `yaml:"debounce,omitempty" json:"debounce,omitempty" mapstructure:"debounce"`
	Validators  []Rule                 `yaml:"validators,omitempty" json:"validators,omitempty" mapstructure:"validators"`
	Async       []Rule                 `yaml:"async,omitempty" json:"async,omitempty" mapstructure:"async"`
	Controls    map[string]*Definition `yaml:"controls,omitempty" json:"controls,omitempty" mapstructure:"controls"`
	Items       []*Definition          `yaml:"items,omitempty" json:"items,omitempty" mapstructure:"items"`
	// Item configures the fields an array creates when a longer value is set.
	Item *Definition `yaml:"item,omitempty" json:"item,omitempty" mapstructure:"item"`
}

// ResolvedKind returns Kind, inferring it when empty.
func (d *Definition) ResolvedKind() Kind {
	switch {
	case d.Kind != "":
		return d.Kind
	case d.Controls != nil:
		return KindGroup
	case d.Items != nil || d.Item != nil:
		return KindArray
	default:
		return KindField
	}
}

// Validate checks the definition tree without building it.
func (d *Definition) Validate() error {
	return d.validate("")
}

func (d *Definition) validate(path string) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, at(path, fmt.Sprintf(format, args...)))
	}

	switch kind := d.ResolvedKind(); kind {
	case KindField:
		if d.Controls != nil || d.Items != nil || d.Item != nil {
			return fail("a field cannot have controls or items")
		}
	case KindGroup:
		if d.Items != nil || d.Item != nil {
			return fail("a group cannot have items")
		}
	case KindArray:
		if d.Controls != nil {
			return fail("an array cannot have controls")
		}
		if d.Item != nil && d.Item.ResolvedKind() != KindField {
			return fail("item template must be a field")
		}
	default:
		return fail("unknown kind %q", kind)
	}
	if d.Debounce != nil && *d.Debounce < 0 {
		return fail("negative debounce %s", *d.Debounce)
	}
	for i, r := range slices.Concat(d.Validators, d.Async) {
		if r.Name == "" {
			return fail("rule %d has no name", i)
		}
	}

	for key, child := range d.Controls {
		if child == nil {
			return fail("control %q is empty", key)
		}
		if strings.Contains(key, ".") {
			return fail("control key %q contains a dot", key)
		}
		if err := child.validate(join(path, key)); err != nil {
			return err
		}
	}
	for i, child := range d.Items {
		if child == nil {
			return fail("item %d is empty", i)
		}
		if err := child.validate(join(path, fmt.Sprint(i))); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a definition document.
func Parse(data []byte, format Format) (*Definition, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse definition json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse definition yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return Decode(raw)
}

// Decode builds a definition from a generic document, as produced by a YAML or
// JSON decoder. Durations may be given as strings ("250ms") or nanoseconds.
func Decode(raw map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &def,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads a definition file; the format follows the extension and
// defaults to YAML.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data, FormatOf(path))
}

// FormatOf guesses the format of a file from its extension.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func at(path, msg string) string {
	if path == "" {
		return msg
	}
	return path + ": " + msg
}
