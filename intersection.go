package hitree

import (
	"iter"

	"github.com/hupe1980/hitree/bitblock"
)

// IntersectionView is the lazy result of Intersection.
type IntersectionView[B bitblock.Block[B], A, C, R any] struct {
	a Source[B, A]
	b Source[B, C]
	f func(A, C) R
}

// Intersection returns a view holding the indices present in both a and b,
// with value f(a, b).
//
// Masks are the AND of both sides. The AND of two intermediate masks may
// claim a subtree that holds no common entry, so the view is never exact and
// presence is settled at the last level. Intersection panics if a and b
// differ in depth.
func Intersection[B bitblock.Block[B], A, C, R any](a Source[B, A], b Source[B, C], f func(A, C) R) *IntersectionView[B, A, C, R] {
	mustSameDepth(a.Depth(), b.Depth())
	return &IntersectionView[B, A, C, R]{a: a, b: b, f: f}
}

// Depth implements Source.
func (v *IntersectionView[B, A, C, R]) Depth() int { return v.a.Depth() }

// Exact implements Source.
func (v *IntersectionView[B, A, C, R]) Exact() bool { return false }

// Cursor implements Source.
func (v *IntersectionView[B, A, C, R]) Cursor() Cursor[B, R] {
	return &intersectionCursor[B, A, C, R]{a: v.a.Cursor(), b: v.b.Cursor(), f: v.f}
}

// Get returns f(a, b) if index is present on both sides.
func (v *IntersectionView[B, A, C, R]) Get(index uint64) (R, bool) { return Get[B, R](v, index) }

// All returns an iterator over the common entries in ascending index order.
func (v *IntersectionView[B, A, C, R]) All() iter.Seq2[uint64, R] { return All[B, R](v) }

type intersectionCursor[B bitblock.Block[B], A, C, R any] struct {
	a Cursor[B, A]
	b Cursor[B, C]
	f func(A, C) R
}

func (c *intersectionCursor[B, A, C, R]) Root() B {
	return c.a.Root().And(c.b.Root())
}

func (c *intersectionCursor[B, A, C, R]) Select(level, coord int) B {
	return c.a.Select(level, coord).And(c.b.Select(level, coord))
}

// A set bit in the combined mask is set on both sides.
func (c *intersectionCursor[B, A, C, R]) SelectUnchecked(level, coord int) B {
	return c.a.SelectUnchecked(level, coord).And(c.b.SelectUnchecked(level, coord))
}

func (c *intersectionCursor[B, A, C, R]) Data(coord int) (R, bool) {
	var zero R
	x, ok := c.a.Data(coord)
	if !ok {
		return zero, false
	}
	y, ok := c.b.Data(coord)
	if !ok {
		return zero, false
	}
	return c.f(x, y), true
}

func (c *intersectionCursor[B, A, C, R]) DataUnchecked(coord int) R {
	r, _ := c.Data(coord)
	return r
}
