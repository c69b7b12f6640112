package hitree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDepth is returned when the tree depth is outside [1, MaxDepth].
	ErrInvalidDepth = errors.New("invalid depth")
	// ErrCapacityOverflow is returned when width^depth does not fit in 64 bits.
	ErrCapacityOverflow = errors.New("index space exceeds 64 bits")
	// ErrIndexOutOfRange is the cause of panics raised by inserting an index
	// beyond MaxIndex, and of errors from bulk builders.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDepthMismatch is the cause of panics raised by composing sources of
	// different depth.
	ErrDepthMismatch = errors.New("sources differ in depth")
	// ErrCorrupt is wrapped by every ErrInvariant.
	ErrCorrupt = errors.New("tree invariant violated")
)

// ErrInvalidConfig indicates an unusable (width, depth) configuration.
//
// The underlying reason (ErrInvalidDepth or ErrCapacityOverflow) can be
// accessed via errors.Unwrap.
type ErrInvalidConfig struct {
	Depth int
	Width int
	cause error
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration: width %d, depth %d: %v", e.Width, e.Depth, e.cause)
}

func (e *ErrInvalidConfig) Unwrap() error { return e.cause }

// ErrIndex reports an index outside the addressable range of a tree.
type ErrIndex struct {
	Index    uint64
	MaxIndex uint64
}

func (e *ErrIndex) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d]", e.Index, e.MaxIndex)
}

func (e *ErrIndex) Unwrap() error { return ErrIndexOutOfRange }

// ErrInvariant describes one structural inconsistency found by Validate.
type ErrInvariant struct {
	Level  int
	Node   uint32
	Reason string
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("level %d node %d: %s", e.Level, e.Node, e.Reason)
}

func (e *ErrInvariant) Unwrap() error { return ErrCorrupt }
