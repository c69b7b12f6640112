package hitree

import (
	"iter"
	"slices"

	"github.com/hupe1980/hitree/bitblock"
)

// The []V produced by multi views is owned by the cursor and overwritten by
// its next Data call. Materialize clones it; other consumers that keep the
// slices use Map(view, slices.Clone).

var (
	_ lender[[]int] = (*MultiIntersectionView[bitblock.Block64, int])(nil)
	_ lender[[]int] = (*MultiUnionView[bitblock.Block64, int])(nil)
)

// MultiIntersectionView is the lazy result of MultiIntersection.
type MultiIntersectionView[B bitblock.Block[B], V any] struct {
	srcs  []Source[B, V]
	depth int
}

// MultiIntersection returns a view holding the indices present in every
// source. The value at an index lists each source's value in source order.
//
// Without sources the view is empty and has depth 1. MultiIntersection
// panics if the sources differ in depth.
func MultiIntersection[B bitblock.Block[B], V any](srcs ...Source[B, V]) *MultiIntersectionView[B, V] {
	return &MultiIntersectionView[B, V]{srcs: srcs, depth: multiDepth(srcs)}
}

// Depth implements Source.
func (m *MultiIntersectionView[B, V]) Depth() int { return m.depth }

// Exact implements Source. An AND of intermediate masks may overstate the
// common entries, so the view is never exact.
func (m *MultiIntersectionView[B, V]) Exact() bool { return false }

// Cursor implements Source.
func (m *MultiIntersectionView[B, V]) Cursor() Cursor[B, []V] {
	c := &multiIntersectionCursor[B, V]{
		curs:  make([]Cursor[B, V], len(m.srcs)),
		buf:   make([]V, 0, len(m.srcs)),
		depth: m.depth,
		empty: m.depth,
	}
	for i, s := range m.srcs {
		c.curs[i] = s.Cursor()
	}
	return c
}

func (m *MultiIntersectionView[B, V]) retain(vs []V) []V { return slices.Clone(vs) }

// Get returns the values of all sources at index if every source holds it.
// The slice is freshly allocated.
func (m *MultiIntersectionView[B, V]) Get(index uint64) ([]V, bool) {
	return Get[B, []V](m, index)
}

// All returns an iterator over the common entries in ascending index order.
// The yielded slice is reused between steps.
func (m *MultiIntersectionView[B, V]) All() iter.Seq2[uint64, []V] { return All[B, []V](m) }

type multiIntersectionCursor[B bitblock.Block[B], V any] struct {
	curs  []Cursor[B, V]
	buf   []V
	depth int

	// empty is the shallowest level whose folded mask is zero, or depth when
	// none is. Levels below it have nothing to select.
	empty int
}

func (c *multiIntersectionCursor[B, V]) Root() B {
	var m B
	for i, cur := range c.curs {
		if i == 0 {
			m = cur.Root()
			continue
		}
		m = m.And(cur.Root())
	}
	c.track(0, m)
	return m
}

func (c *multiIntersectionCursor[B, V]) Select(level, coord int) B {
	return c.fold(level, coord, false)
}

func (c *multiIntersectionCursor[B, V]) SelectUnchecked(level, coord int) B {
	return c.fold(level, coord, true)
}

func (c *multiIntersectionCursor[B, V]) fold(level, coord int, unchecked bool) B {
	var m B
	if level > c.empty {
		return m
	}
	for i, cur := range c.curs {
		var next B
		if unchecked {
			next = cur.SelectUnchecked(level, coord)
		} else {
			next = cur.Select(level, coord)
		}
		if i == 0 {
			m = next
		} else {
			m = m.And(next)
		}
		if m.IsZero() {
			break
		}
	}
	c.track(level, m)
	return m
}

func (c *multiIntersectionCursor[B, V]) track(level int, m B) {
	if m.IsZero() {
		c.empty = level
	} else {
		c.empty = c.depth
	}
}

func (c *multiIntersectionCursor[B, V]) Data(coord int) ([]V, bool) {
	if c.empty < c.depth || len(c.curs) == 0 {
		return nil, false
	}
	c.buf = c.buf[:0]
	for _, cur := range c.curs {
		v, ok := cur.Data(coord)
		if !ok {
			return nil, false
		}
		c.buf = append(c.buf, v)
	}
	return c.buf, true
}

func (c *multiIntersectionCursor[B, V]) DataUnchecked(coord int) []V {
	vs, _ := c.Data(coord)
	return vs
}

// MultiUnionView is the lazy result of MultiUnion.
type MultiUnionView[B bitblock.Block[B], V any] struct {
	srcs  []Source[B, V]
	depth int
}

// MultiUnion returns a view holding the indices present in any source. The
// value at an index lists the values of the sources that hold it, in source
// order.
//
// The view is exact when every source is. Without sources the view is empty
// and has depth 1. MultiUnion panics if the sources differ in depth.
func MultiUnion[B bitblock.Block[B], V any](srcs ...Source[B, V]) *MultiUnionView[B, V] {
	return &MultiUnionView[B, V]{srcs: srcs, depth: multiDepth(srcs)}
}

// Depth implements Source.
func (m *MultiUnionView[B, V]) Depth() int { return m.depth }

// Exact implements Source.
func (m *MultiUnionView[B, V]) Exact() bool {
	for _, s := range m.srcs {
		if !s.Exact() {
			return false
		}
	}
	return true
}

// Cursor implements Source.
func (m *MultiUnionView[B, V]) Cursor() Cursor[B, []V] {
	c := &multiUnionCursor[B, V]{
		curs:  make([]Cursor[B, V], len(m.srcs)),
		masks: make([][MaxDepth]B, len(m.srcs)),
		buf:   make([]V, 0, len(m.srcs)),
		last:  m.depth - 1,
	}
	for i, s := range m.srcs {
		c.curs[i] = s.Cursor()
	}
	return c
}

func (m *MultiUnionView[B, V]) retain(vs []V) []V { return slices.Clone(vs) }

// Get returns the values of the sources holding index. The slice is freshly
// allocated.
func (m *MultiUnionView[B, V]) Get(index uint64) ([]V, bool) { return Get[B, []V](m, index) }

// All returns an iterator over the combined entries in ascending index
// order. The yielded slice is reused between steps.
func (m *MultiUnionView[B, V]) All() iter.Seq2[uint64, []V] { return All[B, []V](m) }

// multiUnionCursor gates every source by its own mask, like unionCursor.
type multiUnionCursor[B bitblock.Block[B], V any] struct {
	curs  []Cursor[B, V]
	masks [][MaxDepth]B
	buf   []V
	last  int
}

func (c *multiUnionCursor[B, V]) Root() B {
	var m B
	for i, cur := range c.curs {
		c.masks[i][0] = cur.Root()
		m = m.Or(c.masks[i][0])
	}
	return m
}

func (c *multiUnionCursor[B, V]) Select(level, coord int) B {
	var m, zero B
	for i, cur := range c.curs {
		c.masks[i][level] = zero
		if c.masks[i][level-1].Get(coord) {
			c.masks[i][level] = cur.SelectUnchecked(level, coord)
			m = m.Or(c.masks[i][level])
		}
	}
	return m
}

func (c *multiUnionCursor[B, V]) SelectUnchecked(level, coord int) B {
	return c.Select(level, coord)
}

func (c *multiUnionCursor[B, V]) Data(coord int) ([]V, bool) {
	c.buf = c.buf[:0]
	for i, cur := range c.curs {
		if !c.masks[i][c.last].Get(coord) {
			continue
		}
		if v, ok := cur.Data(coord); ok {
			c.buf = append(c.buf, v)
		}
	}
	return c.buf, len(c.buf) > 0
}

func (c *multiUnionCursor[B, V]) DataUnchecked(coord int) []V {
	vs, _ := c.Data(coord)
	return vs
}

func multiDepth[B bitblock.Block[B], V any](srcs []Source[B, V]) int {
	if len(srcs) == 0 {
		return 1
	}
	depths := make([]int, len(srcs))
	for i, s := range srcs {
		depths[i] = s.Depth()
	}
	mustSameDepth(depths...)
	return depths[0]
}
