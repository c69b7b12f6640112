package hitree

import (
	"iter"

	"github.com/hupe1980/hitree/bitblock"
)

// Iterator walks a source in ascending index order.
//
// It keeps one bit queue per level and the coordinate last taken at each
// level, so advancing costs one queue pop plus one Select for every level
// whose queue ran dry. An Iterator is single-pass and cannot be restarted.
type Iterator[B bitblock.Block[B], V any] struct {
	cur    Cursor[B, V]
	depth  int
	shift  uint
	exact  bool
	level  int
	queues [MaxDepth]bitblock.Queue
	coords [MaxDepth]int

	// tight[l] is true while coords[:l] equal the coordinates of from.
	tight [MaxDepth]bool
	from  uint64
}

// Iterate returns an iterator over all entries of src.
func Iterate[B bitblock.Block[B], V any](src Source[B, V]) *Iterator[B, V] {
	it := newIterator(src)
	it.queues[0] = it.cur.Root().Queue()
	return it
}

// IterateFrom returns an iterator over the entries of src with index >= from.
func IterateFrom[B bitblock.Block[B], V any](src Source[B, V], from uint64) *Iterator[B, V] {
	it := newIterator(src)
	if bits := it.shift * uint(it.depth); bits < 64 && from>>bits != 0 {
		return it
	}
	it.from = from
	it.tight[0] = true
	it.queues[0] = it.cur.Root().Queue()
	it.queues[0].TrimTo(it.fromCoord(0))
	return it
}

func newIterator[B bitblock.Block[B], V any](src Source[B, V]) *Iterator[B, V] {
	return &Iterator[B, V]{
		cur:   src.Cursor(),
		depth: src.Depth(),
		shift: bitblock.Shift[B](),
		exact: src.Exact(),
	}
}

// Next returns the next entry. ok is false once the iterator is exhausted.
func (it *Iterator[B, V]) Next() (index uint64, v V, ok bool) {
	last := it.depth - 1
	for {
		c, popped := it.queues[it.level].Next()
		if !popped {
			if it.level == 0 {
				return 0, v, false
			}
			it.level--
			continue
		}
		it.coords[it.level] = c

		if it.level == last {
			if it.exact {
				return it.index(), it.cur.DataUnchecked(c), true
			}
			if v, ok = it.cur.Data(c); ok {
				return it.index(), v, true
			}
			continue
		}

		next := it.level + 1
		q := it.cur.SelectUnchecked(next, c).Queue()
		tight := it.tight[it.level] && c == it.fromCoord(it.level)
		if tight {
			q.TrimTo(it.fromCoord(next))
		}
		it.tight[next] = tight
		it.queues[next] = q
		it.level = next
	}
}

func (it *Iterator[B, V]) index() uint64 {
	var index uint64
	for l := 0; l < it.depth; l++ {
		index = index<<it.shift | uint64(it.coords[l])
	}
	return index
}

func (it *Iterator[B, V]) fromCoord(level int) int {
	return coordOf(it.from, it.shift, it.depth, level)
}

// All returns an iterator over all entries of src in ascending index order.
func All[B bitblock.Block[B], V any](src Source[B, V]) iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		drain(Iterate(src), yield)
	}
}

// AllFrom returns an iterator over the entries of src with index >= from.
func AllFrom[B bitblock.Block[B], V any](src Source[B, V], from uint64) iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		drain(IterateFrom(src, from), yield)
	}
}

func drain[B bitblock.Block[B], V any](it *Iterator[B, V], yield func(uint64, V) bool) {
	for {
		k, v, ok := it.Next()
		if !ok || !yield(k, v) {
			return
		}
	}
}
