package snapshot

import (
	"fmt"
	"io"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Kind names the control kind in a snapshot.
type Kind string

const (
	KindField Kind = "field"
	KindGroup Kind = "group"
	KindArray Kind = "array"
)

// Node is a read-only copy of one control and its subtree.
type Node struct {
	Key      string                `json:"key,omitempty" yaml:"key,omitempty"`
	Path     string                `json:"path" yaml:"path"`
	Kind     Kind                  `json:"kind" yaml:"kind"`
	Value    any                   `json:"value" yaml:"value"`
	Status   form.Status           `json:"status" yaml:"status"`
	Errors   form.ValidationErrors `json:"errors,omitempty" yaml:"errors,omitempty"`
	Pristine bool                  `json:"pristine" yaml:"pristine"`
	Touched  bool                  `json:"touched" yaml:"touched"`
	Focused  bool                  `json:"focused,omitempty" yaml:"focused,omitempty"`
	Children []Node                `json:"children,omitempty" yaml:"children,omitempty"`
}

// Take copies c and its descendants. It enters c's zone, so it may be called
// from any goroutine and from subscribers, but not from validators or hooks.
func Take(c form.Control) Node {
	var n Node
	c.Zone().Do(func() { n = take(c, "") })
	return n
}

func take(c form.Control, key string) Node {
	n := Node{
		Key:      key,
		Path:     c.Path(),
		Value:    c.Value(),
		Status:   c.Status(),
		Errors:   c.OwnErrors(),
		Pristine: c.Pristine(),
		Touched:  c.Touched(),
	}
	switch v := c.(type) {
	case *form.Field:
		n.Kind = KindField
		n.Focused = v.Focused()
	case *form.Group:
		n.Kind = KindGroup
	case *form.Array:
		n.Kind = KindArray
	}
	if coll, ok := c.(form.Collection); ok {
		for _, child := range coll.Children() {
			n.Children = append(n.Children, take(child.Control, child.Key))
		}
	}
	return n
}

// Walk visits n and its descendants depth-first, parents first.
func (n Node) Walk(fn func(Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Invalid lists the nodes holding their own errors.
func (n Node) Invalid() []Node {
	var out []Node
	n.Walk(func(c Node) {
		if len(c.Errors) > 0 {
			out = append(out, c)
		}
	})
	return out
}

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Encode writes n to w.
func (n Node) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(n)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(n); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}
