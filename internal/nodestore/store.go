// Package nodestore implements the per-level node storage of the tree.
//
// Nodes are addressed by uint32 handles into a level-local arena. Handle 0 of
// every store is a permanent empty sentinel: its mask is zero and every child
// lookup through it yields 0, so a descent that leaves the populated part of
// the tree keeps landing on the sentinel instead of branching.
//
// Two encodings share the Store contract:
//
//   - Fixed: child arrays sized to the full block width, carved out of one slab
//     per level; emptied nodes go onto an intrusive free list.
//   - Dense: one child array per node holding exactly the populated children in
//     mask-bit order; memory is proportional to the actual fan-out.
package nodestore

import (
	"fmt"

	"github.com/hupe1980/hitree/bitblock"
)

// Sentinel is the handle of the empty sentinel node.
const Sentinel uint32 = 0

// Store holds the nodes of one tree level.
//
// Children are opaque uint32 values; 0 means "absent". A Store never
// interprets them, so the same type serves inner levels (children are node
// handles of the next level) and the last level (children are value slots).
type Store[B bitblock.Block[B]] interface {
	// Alloc returns the handle of a new, empty node.
	Alloc() uint32
	// Free releases an empty node. The handle may be returned by a later Alloc.
	Free(h uint32)
	// Mask returns the presence mask of node h.
	Mask(h uint32) B
	// Contains reports whether node h has child i.
	Contains(h uint32, i int) bool
	// GetOrZero returns child i of node h, or 0 if absent.
	GetOrZero(h uint32, i int) uint32
	// Child returns child i of node h. The child must be present.
	Child(h uint32, i int) uint32
	// GetOrInsert returns child i of node h, inserting mk() if absent.
	GetOrInsert(h uint32, i int, mk func() uint32) uint32
	// Replace overwrites the present child i of node h.
	Replace(h uint32, i int, child uint32)
	// RemoveUnchecked removes the present child i of node h.
	RemoveUnchecked(h uint32, i int)
	// Each calls f for every child of node h in ascending position order
	// until f returns false.
	Each(h uint32, f func(i int, child uint32) bool)
	// Verify checks the internal consistency of node h.
	Verify(h uint32) error
	// Live returns the number of allocated nodes, the sentinel excluded.
	Live() int
	// Bytes returns the approximate memory held by the store.
	Bytes() int
	// Reset drops every node except the sentinel.
	Reset()
}

// Kind selects a node encoding.
type Kind uint8

const (
	// KindDense selects the Dense encoding.
	KindDense Kind = iota
	// KindFixed selects the Fixed encoding.
	KindFixed
)

// String returns the name of the encoding.
func (k Kind) String() string {
	switch k {
	case KindDense:
		return "dense"
	case KindFixed:
		return "fixed"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// New returns an empty store of the given kind.
func New[B bitblock.Block[B]](k Kind) Store[B] {
	if k == KindFixed {
		return NewFixed[B]()
	}
	return NewDense[B]()
}
