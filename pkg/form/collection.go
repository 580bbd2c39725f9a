package form

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/formtree/pkg/broadcast"
)

// Child is an entry of a composite: the key is the group name or the array index.
type Child struct {
	Key     string
	Control Control
}

// Collection is the behaviour shared by Group and Array: addressing children
// and announcing structural changes. Value aggregation stays per kind.
type Collection interface {
	Control

	// Get resolves a dotted path below the collection.
	Get(path string) (Control, error)
	// Contains reports whether key addresses a direct child.
	Contains(key string) bool
	// Children lists the direct children in order.
	Children() []Child
	// CollectionChanges emits the children list after every structural change.
	CollectionChanges() *broadcast.Stream[[]Child]
	MarkAllAsTouched(opts ...UpdateOption)

	child(segment string) (Control, error)
	keyOf(c Control) (string, bool)
	// detach unlinks c, recomputes and announces the new structure.
	detach(c Control, cfg updateConfig) bool
}

// resolve walks path segment by segment from root.
func resolve(root Control, path string) (Control, error) {
	if path == "" {
		return nil, &PathError{Path: path, Segment: path, Err: ErrControlNotFound}
	}
	cur := root
	for _, segment := range strings.Split(path, ".") {
		coll, ok := cur.(Collection)
		if !ok {
			return nil, &PathError{Path: path, Segment: segment, Err: ErrControlNotFound}
		}
		next, err := coll.child(segment)
		if err != nil {
			return nil, &PathError{Path: path, Segment: segment, Err: err}
		}
		cur = next
	}
	return cur, nil
}

// checkAdoptable enforces single ownership, acyclicity and zone membership.
func checkAdoptable(parent Collection, c Control) error {
	if c == nil {
		return fmt.Errorf("%w: nil control", ErrValueType)
	}
	cb, pb := c.base(), parent.base()
	switch {
	case cb.disposed:
		return ErrDisposed
	case cb.zone != pb.zone:
		return ErrZoneMismatch
	case cb.parent != nil:
		return ErrAlreadyOwned
	}
	for cur := Control(parent); cur != nil; {
		if cur == c {
			return ErrCycle
		}
		p := cur.Parent()
		if p == nil {
			break
		}
		cur = p
	}
	return nil
}

// announce queues a collection-changed notification.
func announce(z *Zone, s *broadcast.Stream[[]Child], children []Child) {
	z.notify(func() { s.Emit(children) })
}

// toMap accepts nil and any map keyed by strings.
func toMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, true
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return nil, true
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// toSlice accepts nil, slices and arrays.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
