package form

import (
	"errors"
	"fmt"
)

var (
	// ErrControlNotFound is returned when a path segment does not name a child.
	ErrControlNotFound = errors.New("control not found")
	// ErrInvalidIndex is returned when a non-integer segment addresses an array.
	ErrInvalidIndex = errors.New("invalid array index")
	// ErrChildNotPresent is returned when removing a child the composite does not hold.
	ErrChildNotPresent = errors.New("child not present")

	// ErrAlreadyOwned is returned when inserting a control that already has a parent.
	ErrAlreadyOwned = errors.New("control already has a parent")
	// ErrCycle is returned when inserting a control into itself or one of its descendants.
	ErrCycle = errors.New("control would become its own ancestor")
	// ErrZoneMismatch is returned when linking controls that belong to different zones.
	ErrZoneMismatch = errors.New("control belongs to a different zone")
	// ErrDisposed is returned by operations on a disposed control.
	ErrDisposed = errors.New("control is disposed")
	// ErrValueType is returned when a composite receives a value of the wrong shape.
	ErrValueType = errors.New("unexpected value type")
	// ErrIndexOutOfRange is returned by positional array operations.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// PathError records a failed path resolution.
type PathError struct {
	Path    string // Full path being resolved
	Segment string // Segment that failed
	Err     error  // ErrControlNotFound or ErrInvalidIndex
}

func (e *PathError) Error() string {
	if e.Segment == e.Path {
		return fmt.Sprintf("%s at path %q", e.Err, e.Path)
	}
	return fmt.Sprintf("%s at path %q (segment %q)", e.Err, e.Path, e.Segment)
}

func (e *PathError) Unwrap() error { return e.Err }
