package hitree

import (
	"iter"

	"github.com/hupe1980/hitree/bitblock"
)

// FoldView is the lazy result of Fold.
type FoldView[B bitblock.Block[B], V, R any] struct {
	src  Source[B, []V]
	init R
	f    func(R, V) R
}

// Fold reduces the value lists of a multi view into one value per index,
// starting from init for every index.
//
//	sum := hitree.Fold(hitree.MultiUnion(a, b, c), 0, func(acc, v int) int { return acc + v })
func Fold[B bitblock.Block[B], V, R any](src Source[B, []V], init R, f func(R, V) R) *FoldView[B, V, R] {
	return &FoldView[B, V, R]{src: src, init: init, f: f}
}

// Depth implements Source.
func (v *FoldView[B, V, R]) Depth() int { return v.src.Depth() }

// Exact implements Source.
func (v *FoldView[B, V, R]) Exact() bool { return v.src.Exact() }

// Cursor implements Source.
func (v *FoldView[B, V, R]) Cursor() Cursor[B, R] {
	return &foldCursor[B, V, R]{inner: v.src.Cursor(), view: v}
}

// Get returns the folded value at index.
func (v *FoldView[B, V, R]) Get(index uint64) (R, bool) { return Get[B, R](v, index) }

// All returns an iterator over the folded entries in ascending index order.
func (v *FoldView[B, V, R]) All() iter.Seq2[uint64, R] { return All[B, R](v) }

type foldCursor[B bitblock.Block[B], V, R any] struct {
	inner Cursor[B, []V]
	view  *FoldView[B, V, R]
}

func (c *foldCursor[B, V, R]) Root() B { return c.inner.Root() }

func (c *foldCursor[B, V, R]) Select(level, coord int) B { return c.inner.Select(level, coord) }

func (c *foldCursor[B, V, R]) SelectUnchecked(level, coord int) B {
	return c.inner.SelectUnchecked(level, coord)
}

func (c *foldCursor[B, V, R]) Data(coord int) (R, bool) {
	vs, ok := c.inner.Data(coord)
	if !ok {
		var zero R
		return zero, false
	}
	return c.reduce(vs), true
}

func (c *foldCursor[B, V, R]) DataUnchecked(coord int) R {
	return c.reduce(c.inner.DataUnchecked(coord))
}

func (c *foldCursor[B, V, R]) reduce(vs []V) R {
	acc := c.view.init
	for _, v := range vs {
		acc = c.view.f(acc, v)
	}
	return acc
}
