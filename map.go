package hitree

import (
	"iter"

	"github.com/hupe1980/hitree/bitblock"
)

// MapView is the lazy result of Map.
type MapView[B bitblock.Block[B], V, R any] struct {
	src Source[B, V]
	f   func(V) R
}

// Map returns a view of src whose values are f applied to the values of src.
// The structure of src is kept unchanged. f runs on every read.
func Map[B bitblock.Block[B], V, R any](src Source[B, V], f func(V) R) *MapView[B, V, R] {
	return &MapView[B, V, R]{src: src, f: f}
}

// Depth implements Source.
func (m *MapView[B, V, R]) Depth() int { return m.src.Depth() }

// Exact implements Source.
func (m *MapView[B, V, R]) Exact() bool { return m.src.Exact() }

// Cursor implements Source.
func (m *MapView[B, V, R]) Cursor() Cursor[B, R] {
	return &mapCursor[B, V, R]{inner: m.src.Cursor(), f: m.f}
}

// Get returns the mapped value at index.
func (m *MapView[B, V, R]) Get(index uint64) (R, bool) { return Get[B, R](m, index) }

// All returns an iterator over the mapped entries in ascending index order.
func (m *MapView[B, V, R]) All() iter.Seq2[uint64, R] { return All[B, R](m) }

type mapCursor[B bitblock.Block[B], V, R any] struct {
	inner Cursor[B, V]
	f     func(V) R
}

func (c *mapCursor[B, V, R]) Root() B { return c.inner.Root() }

func (c *mapCursor[B, V, R]) Select(level, coord int) B { return c.inner.Select(level, coord) }

func (c *mapCursor[B, V, R]) SelectUnchecked(level, coord int) B {
	return c.inner.SelectUnchecked(level, coord)
}

func (c *mapCursor[B, V, R]) Data(coord int) (R, bool) {
	v, ok := c.inner.Data(coord)
	if !ok {
		var zero R
		return zero, false
	}
	return c.f(v), true
}

func (c *mapCursor[B, V, R]) DataUnchecked(coord int) R {
	return c.f(c.inner.DataUnchecked(coord))
}
