package hitree

import (
	"fmt"

	"github.com/hupe1980/hitree/bitblock"
)

// Source is the read side shared by Tree and every lazy view.
//
// A Source hands out cursors. Views built from sources are sources again, so
// compositions such as Intersection(Union(a, b, f), c, g) are ordinary values
// that nothing materializes until they are traversed.
type Source[B bitblock.Block[B], V any] interface {
	// Depth returns the number of levels.
	Depth() int
	// Exact reports whether every set bit of every intermediate mask leads to
	// at least one present entry. Traversals of inexact sources must confirm
	// presence at the last level.
	Exact() bool
	// Cursor returns a fresh cursor positioned at the root.
	Cursor() Cursor[B, V]
}

// Cursor descends a source one level at a time.
//
// Level 0 is the root, which is always selected. Select(level, c) selects
// child c of the node currently selected at level-1 and returns its mask.
// Selecting a level invalidates the selections of all deeper levels, so a
// caller that changes level l must reselect every level below it, depth
// first. Data reads through the node selected at the last level.
//
// A cursor is single-goroutine state. Distinct cursors over the same source
// may be used concurrently.
type Cursor[B bitblock.Block[B], V any] interface {
	// Root returns the mask of the root node.
	Root() B
	// Select selects child coord of the node at level-1. It returns the zero
	// mask if that child is absent.
	Select(level, coord int) B
	// SelectUnchecked is Select for a coord whose bit is set in the mask of
	// the node at level-1.
	SelectUnchecked(level, coord int) B
	// Data returns the entry coord of the node at the last level.
	Data(coord int) (V, bool)
	// DataUnchecked is Data for a coord whose bit is set in the mask of the
	// node at the last level. On inexact sources the result is unspecified
	// unless the entry is actually present.
	DataUnchecked(coord int) V
}

var _ Source[bitblock.Block64, int] = (*Tree[bitblock.Block64, int])(nil)

// Exact implements Source. A tree frees emptied nodes eagerly, so every mask
// bit leads to an entry.
func (t *Tree[B, V]) Exact() bool { return true }

// Cursor implements Source.
func (t *Tree[B, V]) Cursor() Cursor[B, V] {
	c := &treeCursor[B, V]{t: t}
	c.nodes[0] = rootHandle
	return c
}

type treeCursor[B bitblock.Block[B], V any] struct {
	t     *Tree[B, V]
	nodes [MaxDepth]uint32
}

func (c *treeCursor[B, V]) Root() B {
	return c.t.levels[0].Mask(rootHandle)
}

func (c *treeCursor[B, V]) Select(level, coord int) B {
	h := c.t.levels[level-1].GetOrZero(c.nodes[level-1], coord)
	c.nodes[level] = h
	return c.t.levels[level].Mask(h)
}

func (c *treeCursor[B, V]) SelectUnchecked(level, coord int) B {
	h := c.t.levels[level-1].Child(c.nodes[level-1], coord)
	c.nodes[level] = h
	return c.t.levels[level].Mask(h)
}

func (c *treeCursor[B, V]) Data(coord int) (V, bool) {
	last := c.t.depth - 1
	slot := c.t.levels[last].GetOrZero(c.nodes[last], coord)
	return c.t.values[slot], slot != 0
}

func (c *treeCursor[B, V]) DataUnchecked(coord int) V {
	last := c.t.depth - 1
	return c.t.values[c.t.levels[last].Child(c.nodes[last], coord)]
}

// Get returns the entry of src at index.
//
// Get descends a fresh cursor, testing each coordinate against the mask of
// the level above it, and confirms presence at the last level.
func Get[B bitblock.Block[B], V any](src Source[B, V], index uint64) (V, bool) {
	var zero V
	depth := src.Depth()
	shift := bitblock.Shift[B]()
	if bits := shift * uint(depth); bits < 64 && index>>bits != 0 {
		return zero, false
	}

	cur := src.Cursor()
	mask := cur.Root()
	for level := 1; level < depth; level++ {
		c := coordOf(index, shift, depth, level-1)
		if !mask.Get(c) {
			return zero, false
		}
		mask = cur.SelectUnchecked(level, c)
	}
	c := coordOf(index, shift, depth, depth-1)
	if !mask.Get(c) {
		return zero, false
	}
	return cur.Data(c)
}

// Contains reports whether src has an entry at index.
func Contains[B bitblock.Block[B], V any](src Source[B, V], index uint64) bool {
	_, ok := Get(src, index)
	return ok
}

func mustSameDepth(depths ...int) {
	for _, d := range depths[1:] {
		if d != depths[0] {
			panic(fmt.Errorf("hitree: %w: %v", ErrDepthMismatch, depths))
		}
	}
}
