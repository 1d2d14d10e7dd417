package ptree

import (
	"errors"
	"fmt"
)

var (
	// ErrBadPath reports a path segment that matched no child during
	// resolution, when the caller supplied no default.
	ErrBadPath = errors.New("bad path")

	// ErrBadData reports a node value that does not parse as the
	// requested scalar type.
	ErrBadData = errors.New("bad data")

	// ErrBadValue reports a scalar of a type outside the closed
	// coercion table (string, bool, integer, float, nil, *Node).
	ErrBadValue = errors.New("bad value type")

	ErrKeyNotFound   = errors.New("key not found")
	ErrValueNotFound = errors.New("value not found")
	ErrIndexRange    = errors.New("index out of range")
)

// PathError is the payload of an ErrBadPath failure: the full path being
// resolved and the segment that matched no child.
type PathError struct {
	Path    string
	Segment string
}

func (e *PathError) Unwrap() error {
	return ErrBadPath
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: no child matching %q in path %q", ErrBadPath, e.Segment, e.Path)
}
