package hitree

import (
	"iter"

	"github.com/hupe1980/hitree/bitblock"
)

// UnionView is the lazy result of Union.
type UnionView[B bitblock.Block[B], A, C, R any] struct {
	a Source[B, A]
	b Source[B, C]
	f func(a *A, b *C) R
}

// Union returns a view holding the indices present in a or b. f receives a
// pointer to each side's value, or nil for the side where the index is
// absent; it is never called with two nil pointers. The pointers are only
// valid during the call.
//
// The view is exact when both sides are. Union panics if a and b differ in
// depth.
func Union[B bitblock.Block[B], A, C, R any](a Source[B, A], b Source[B, C], f func(a *A, b *C) R) *UnionView[B, A, C, R] {
	mustSameDepth(a.Depth(), b.Depth())
	return &UnionView[B, A, C, R]{a: a, b: b, f: f}
}

// Depth implements Source.
func (v *UnionView[B, A, C, R]) Depth() int { return v.a.Depth() }

// Exact implements Source.
func (v *UnionView[B, A, C, R]) Exact() bool { return v.a.Exact() && v.b.Exact() }

// Cursor implements Source.
func (v *UnionView[B, A, C, R]) Cursor() Cursor[B, R] {
	return &unionCursor[B, A, C, R]{
		a:    v.a.Cursor(),
		b:    v.b.Cursor(),
		f:    v.f,
		last: v.a.Depth() - 1,
	}
}

// Get returns the combined value at index if either side holds it.
func (v *UnionView[B, A, C, R]) Get(index uint64) (R, bool) { return Get[B, R](v, index) }

// All returns an iterator over the combined entries in ascending index order.
func (v *UnionView[B, A, C, R]) All() iter.Seq2[uint64, R] { return All[B, R](v) }

// unionCursor remembers each side's mask per level. A side only descends
// where its own mask has the bit; elsewhere its mask is zero and its cursor
// is left alone.
type unionCursor[B bitblock.Block[B], A, C, R any] struct {
	a    Cursor[B, A]
	b    Cursor[B, C]
	f    func(a *A, b *C) R
	last int
	ma   [MaxDepth]B
	mb   [MaxDepth]B
}

func (c *unionCursor[B, A, C, R]) Root() B {
	c.ma[0], c.mb[0] = c.a.Root(), c.b.Root()
	return c.ma[0].Or(c.mb[0])
}

func (c *unionCursor[B, A, C, R]) Select(level, coord int) B {
	var zero B
	c.ma[level], c.mb[level] = zero, zero
	if c.ma[level-1].Get(coord) {
		c.ma[level] = c.a.SelectUnchecked(level, coord)
	}
	if c.mb[level-1].Get(coord) {
		c.mb[level] = c.b.SelectUnchecked(level, coord)
	}
	return c.ma[level].Or(c.mb[level])
}

func (c *unionCursor[B, A, C, R]) SelectUnchecked(level, coord int) B {
	return c.Select(level, coord)
}

func (c *unionCursor[B, A, C, R]) Data(coord int) (R, bool) {
	var (
		pa *A
		pb *C
	)
	if c.ma[c.last].Get(coord) {
		if x, ok := c.a.Data(coord); ok {
			pa = &x
		}
	}
	if c.mb[c.last].Get(coord) {
		if y, ok := c.b.Data(coord); ok {
			pb = &y
		}
	}
	if pa == nil && pb == nil {
		var zero R
		return zero, false
	}
	return c.f(pa, pb), true
}

func (c *unionCursor[B, A, C, R]) DataUnchecked(coord int) R {
	r, _ := c.Data(coord)
	return r
}
