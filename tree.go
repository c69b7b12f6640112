package hitree

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/hitree/bitblock"
	"github.com/hupe1980/hitree/internal/conv"
	"github.com/hupe1980/hitree/internal/nodestore"
)

// MaxDepth is the deepest supported tree.
const MaxDepth = 8

// rootHandle is the handle of the root node in the level-0 store. It is the
// first allocation after the sentinel and is never freed.
const rootHandle uint32 = 1

// sentinelKey marks value slot 0, which no real index can reach.
const sentinelKey = ^uint64(0)

// backRef records which last-level node entry points at a value slot.
type backRef struct {
	node  uint32
	coord uint16
}

// Tree is a sparse map from dense uint64 indices to values of type V.
//
// The index space is Width^Depth, where Width is the bit width of block type
// B. An index is split most-significant first into Depth coordinates; level l
// of the tree holds nodes whose mask records which coordinates are present
// below them. Nodes live in per-level stores addressed by handles, values in
// one flat array.
//
// A Tree is not safe for concurrent mutation. Concurrent reads, including
// cursors, iterators and views over the tree, are safe as long as no
// goroutine mutates it.
type Tree[B bitblock.Block[B], V any] struct {
	depth  int
	width  int
	shift  uint
	levels []nodestore.Store[B]

	// Slot 0 of values, keys and back is the absent sentinel.
	values []V
	keys   []uint64
	back   []backRef

	opts   options
	logger *Logger
}

// New returns an empty tree of the given depth.
//
// The width is that of B. depth must lie in [1, MaxDepth] and Width^depth
// must fit in 64 bits.
func New[B bitblock.Block[B], V any](depth int, optFns ...Option) (*Tree[B, V], error) {
	width := bitblock.Width[B]()
	shift := bitblock.Shift[B]()
	if depth < 1 || depth > MaxDepth {
		return nil, &ErrInvalidConfig{Depth: depth, Width: width, cause: ErrInvalidDepth}
	}
	if int(shift)*depth > 64 {
		return nil, &ErrInvalidConfig{Depth: depth, Width: width, cause: ErrCapacityOverflow}
	}

	o := applyOptions(optFns)
	t := &Tree[B, V]{
		depth:  depth,
		width:  width,
		shift:  shift,
		levels: make([]nodestore.Store[B], depth),
		opts:   o,
		logger: o.logger.WithDepth(depth).WithWidth(width),
	}
	for l := range t.levels {
		t.levels[l] = nodestore.New[B](o.encoding.kind())
	}
	t.reset()
	return t, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[B bitblock.Block[B], V any](depth int, optFns ...Option) *Tree[B, V] {
	t, err := New[B, V](depth, optFns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree[B, V]) reset() {
	n := t.opts.initialCapacity + 1
	var zero V
	t.values = append(make([]V, 0, n), zero)
	t.keys = append(make([]uint64, 0, n), sentinelKey)
	t.back = append(make([]backRef, 0, n), backRef{})
	if h := t.levels[0].Alloc(); h != rootHandle {
		panic(fmt.Sprintf("hitree: root allocated at handle %d", h))
	}
}

// Depth returns the number of levels.
func (t *Tree[B, V]) Depth() int { return t.depth }

// Width returns the number of coordinates per level.
func (t *Tree[B, V]) Width() int { return t.width }

// Encoding returns the node encoding of the tree.
func (t *Tree[B, V]) Encoding() Encoding { return t.opts.encoding }

// MaxIndex returns the largest addressable index.
func (t *Tree[B, V]) MaxIndex() uint64 { return maxIndex(t.shift, t.depth) }

// Capacity returns Width^Depth, the size of the index space. It returns 0
// when the index space covers all of uint64.
func (t *Tree[B, V]) Capacity() uint64 { return t.MaxIndex() + 1 }

// Len returns the number of entries.
func (t *Tree[B, V]) Len() int { return len(t.values) - 1 }

func (t *Tree[B, V]) inRange(index uint64) bool {
	bits := t.shift * uint(t.depth)
	return bits >= 64 || index>>bits == 0
}

func (t *Tree[B, V]) coord(index uint64, level int) int {
	return coordOf(index, t.shift, t.depth, level)
}

func (t *Tree[B, V]) mustInRange(index uint64) {
	if !t.inRange(index) {
		panic(fmt.Errorf("hitree: %w", &ErrIndex{Index: index, MaxIndex: t.MaxIndex()}))
	}
}

// Get returns the value stored at index.
func (t *Tree[B, V]) Get(index uint64) (V, bool) {
	var zero V
	if !t.inRange(index) {
		return zero, false
	}
	slot := t.lookup(index)
	if slot == 0 {
		return zero, false
	}
	return t.values[slot], true
}

// Contains reports whether index is present.
func (t *Tree[B, V]) Contains(index uint64) bool {
	return t.inRange(index) && t.lookup(index) != 0
}

func (t *Tree[B, V]) lookup(index uint64) uint32 {
	h := rootHandle
	for level, s := range t.levels {
		c := t.coord(index, level)
		if !s.Contains(h, c) {
			return 0
		}
		h = s.Child(h, c)
	}
	return h
}

// GetUnchecked returns the value stored at index, which must be present.
// The result for an absent index is unspecified.
func (t *Tree[B, V]) GetUnchecked(index uint64) V {
	h := rootHandle
	for level, s := range t.levels {
		h = s.GetOrZero(h, t.coord(index, level))
	}
	return t.values[h]
}

// GetOrDefault returns the value stored at index or the zero value of V.
//
// The descent never tests for presence: a missing coordinate leads to the
// sentinel node, whose children all lead to the sentinel value slot.
func (t *Tree[B, V]) GetOrDefault(index uint64) V {
	if !t.inRange(index) {
		var zero V
		return zero
	}
	return t.GetUnchecked(index)
}

// GetOrInsert returns a pointer to the value stored at index, inserting the
// zero value first if the index is absent. The pointer is valid until the
// next mutation of the tree.
//
// GetOrInsert panics with an error wrapping ErrIndexOutOfRange if index
// exceeds MaxIndex.
func (t *Tree[B, V]) GetOrInsert(index uint64) *V {
	slot, created := t.insertSlot(index)
	t.opts.metricsCollector.RecordInsert(created)
	return &t.values[slot]
}

// Insert stores v at index, replacing any previous value.
//
// Insert panics with an error wrapping ErrIndexOutOfRange if index exceeds
// MaxIndex.
func (t *Tree[B, V]) Insert(index uint64, v V) {
	slot, created := t.insertSlot(index)
	t.values[slot] = v
	t.opts.metricsCollector.RecordInsert(created)
}

func (t *Tree[B, V]) insertSlot(index uint64) (uint32, bool) {
	t.mustInRange(index)

	h := rootHandle
	last := t.depth - 1
	for level := 0; level < last; level++ {
		next := level + 1
		h = t.levels[level].GetOrInsert(h, t.coord(index, level), func() uint32 {
			return t.allocNode(next)
		})
	}

	created := false
	c := t.coord(index, last)
	slot := t.levels[last].GetOrInsert(h, c, func() uint32 {
		created = true
		return t.appendSlot(index, h, c)
	})
	return slot, created
}

func (t *Tree[B, V]) allocNode(level int) uint32 {
	h := t.levels[level].Alloc()
	t.opts.metricsCollector.RecordNodeAlloc(level)
	t.logger.LogNodeAlloc(context.Background(), level, h)
	return h
}

func (t *Tree[B, V]) appendSlot(index uint64, node uint32, c int) uint32 {
	slot := conv.MustHandle(len(t.values))
	var zero V
	t.values = append(t.values, zero)
	t.keys = append(t.keys, index)
	t.back = append(t.back, backRef{node: node, coord: uint16(c)})
	return slot
}

// Remove deletes index and returns its value. Removing an absent index is a
// no-op that returns false.
func (t *Tree[B, V]) Remove(index uint64) (V, bool) {
	var zero V
	if !t.inRange(index) {
		t.opts.metricsCollector.RecordRemove(false)
		return zero, false
	}

	var (
		path   [MaxDepth]uint32
		coords [MaxDepth]int
	)
	h := rootHandle
	for level, s := range t.levels {
		c := t.coord(index, level)
		if !s.Contains(h, c) {
			t.opts.metricsCollector.RecordRemove(false)
			return zero, false
		}
		path[level], coords[level] = h, c
		h = s.Child(h, c)
	}
	slot := h

	// Unlink bottom-up; stop at the first node that stays populated.
	for level := t.depth - 1; level >= 0; level-- {
		s := t.levels[level]
		s.RemoveUnchecked(path[level], coords[level])
		if level == 0 || !s.Mask(path[level]).IsZero() {
			break
		}
		s.Free(path[level])
		t.opts.metricsCollector.RecordNodeFree(level)
		t.logger.LogNodeFree(context.Background(), level, path[level])
	}

	v := t.values[slot]
	t.removeSlot(slot)
	t.opts.metricsCollector.RecordRemove(true)
	return v, true
}

// removeSlot swap-removes a value slot and repoints the node entry that
// referenced the moved slot.
func (t *Tree[B, V]) removeSlot(slot uint32) {
	last := uint32(len(t.values) - 1)
	if slot != last {
		t.values[slot] = t.values[last]
		t.keys[slot] = t.keys[last]
		t.back[slot] = t.back[last]
		ref := t.back[slot]
		t.levels[t.depth-1].Replace(ref.node, int(ref.coord), slot)
	}
	var zero V
	t.values[last] = zero
	t.values = t.values[:last]
	t.keys = t.keys[:last]
	t.back = t.back[:last]
}

// Clear removes all entries. The configuration is kept. Every node but the
// root is reported freed to the logger and the metrics collector.
func (t *Tree[B, V]) Clear() {
	for level := 1; level < t.depth; level++ {
		t.eachNode(0, rootHandle, level, func(h uint32) {
			t.opts.metricsCollector.RecordNodeFree(level)
			t.logger.LogNodeFree(context.Background(), level, h)
		})
	}
	for _, s := range t.levels {
		s.Reset()
	}
	clear(t.values)
	t.values = t.values[:0]
	t.keys = t.keys[:0]
	t.back = t.back[:0]
	var zero V
	t.values = append(t.values, zero)
	t.keys = append(t.keys, sentinelKey)
	t.back = append(t.back, backRef{})
	t.levels[0].Alloc()
}

// All returns an iterator over all entries in ascending index order.
func (t *Tree[B, V]) All() iter.Seq2[uint64, V] { return All[B, V](t) }

// AllFrom returns an iterator over the entries with index >= from in
// ascending order.
func (t *Tree[B, V]) AllFrom(from uint64) iter.Seq2[uint64, V] { return AllFrom[B, V](t, from) }

// Keys returns an iterator over all indices in ascending order.
func (t *Tree[B, V]) Keys() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the tree with the same configuration.
func (t *Tree[B, V]) Clone() *Tree[B, V] {
	c := MustNew[B, V](t.depth,
		WithEncoding(t.opts.encoding),
		WithInitialCapacity(t.Len()),
		WithMetricsCollector(t.opts.metricsCollector),
		WithLogger(t.opts.logger),
	)
	for k, v := range t.All() {
		c.Insert(k, v)
	}
	return c
}

func maxIndex(shift uint, depth int) uint64 {
	bits := shift * uint(depth)
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<bits - 1
}

func coordOf(index uint64, shift uint, depth, level int) int {
	return int(index>>(shift*uint(depth-1-level))) & (1<<shift - 1)
}
