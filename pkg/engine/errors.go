package engine

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers branch on a typed value
// instead of matching error text.
type Kind int

const (
	KindUnknown Kind = iota

	// KindMeshDegenerate: the mesh has no triangles, or nothing usable
	// crosses the plane. The element yields zero polygons; not fatal.
	KindMeshDegenerate

	// KindRingUnrepairable: a contour stayed invalid after repair and was
	// discarded. Counted as a defect.
	KindRingUnrepairable

	// KindIntersectionEmpty: the plane misses the element's bounds. A cheap
	// skip, not an error.
	KindIntersectionEmpty

	// KindElementFailure: an unexpected failure while sectioning one
	// element. Caught and counted; never aborts the level.
	KindElementFailure

	// KindLevelEmpty: no element produced a polygon for a level. A warning
	// state; the level is still emitted.
	KindLevelEmpty

	// KindInputLoad: the element/level source could not supply data. Fatal
	// for that input.
	KindInputLoad
)

func (k Kind) String() string {
	switch k {
	case KindMeshDegenerate:
		return "mesh degenerate"
	case KindRingUnrepairable:
		return "ring unrepairable"
	case KindIntersectionEmpty:
		return "intersection empty"
	case KindElementFailure:
		return "element failure"
	case KindLevelEmpty:
		return "level empty"
	case KindInputLoad:
		return "input load failure"
	default:
		return "unknown"
	}
}

// Error is a pipeline failure carrying its Kind and the operation it
// happened in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
