package scene

import (
	"errors"
	"fmt"
)

// Registry errors
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRemoved    = fmt.Errorf("node already removed: %w", ErrNotFound)
	ErrAlreadyRegistered = errors.New("node already registered")
	ErrReleased          = errors.New("handle already released")
	ErrDestroyed         = errors.New("node destroyed")
	ErrInvalidType       = errors.New("invalid node type")
	ErrSerialization     = errors.New("serialization failure")
)

// NodeError records a failed registry operation on a node.
type NodeError struct {
	Op  string
	ID  ID
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s node %d: %v", e.Op, e.ID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// SerializationError reports that a snapshot could not be produced or
// consumed. It matches ErrSerialization with errors.Is regardless of the
// wrapped cause.
type SerializationError struct {
	Op     string // "encode", "decode", "import", "read", "write", "save"
	Format string // "yaml", "json", or empty when not format specific
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Format, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }
