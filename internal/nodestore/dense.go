package nodestore

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/hitree/bitblock"
	"github.com/hupe1980/hitree/internal/conv"
)

// minCapacity is the child capacity of a freshly allocated dense node.
const minCapacity = 2

// denseNode packs its children in mask-bit order. The slice always holds one
// trailing zero past the populated children, so len(children) == Count()+1
// and an absent lookup can read the trailing slot instead of branching.
type denseNode[B bitblock.Block[B]] struct {
	mask     B
	children []uint32
}

// Dense stores one exact-capacity child array per node.
//
// Child i of a node lives at children[mask.Rank(i)]. Inserting shifts the
// trailing children up by one, removing shifts them back. The array doubles
// when full. Freed nodes release their array and their handle is recycled.
type Dense[B bitblock.Block[B]] struct {
	nodes []denseNode[B]
	free  []uint32
	live  int
}

var _ Store[bitblock.Block64] = (*Dense[bitblock.Block64])(nil)

// NewDense returns an empty Dense store holding only the sentinel.
func NewDense[B bitblock.Block[B]]() *Dense[B] {
	return &Dense[B]{
		nodes: []denseNode[B]{{children: []uint32{0}}},
	}
}

// Alloc implements Store.
func (s *Dense[B]) Alloc() uint32 {
	s.live++
	n := denseNode[B]{children: make([]uint32, 1, minCapacity)}
	if k := len(s.free); k > 0 {
		h := s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[h] = n
		return h
	}
	h := conv.MustHandle(len(s.nodes))
	s.nodes = append(s.nodes, n)
	return h
}

// Free implements Store.
func (s *Dense[B]) Free(h uint32) {
	s.nodes[h] = denseNode[B]{}
	s.free = append(s.free, h)
	s.live--
}

// Mask implements Store.
func (s *Dense[B]) Mask(h uint32) B { return s.nodes[h].mask }

// Contains implements Store.
func (s *Dense[B]) Contains(h uint32, i int) bool { return s.nodes[h].mask.Get(i) }

// GetOrZero implements Store.
func (s *Dense[B]) GetOrZero(h uint32, i int) uint32 {
	n := &s.nodes[h]
	pos := len(n.children) - 1
	if n.mask.Get(i) {
		pos = n.mask.Rank(i)
	}
	return n.children[pos]
}

// Child implements Store.
func (s *Dense[B]) Child(h uint32, i int) uint32 {
	n := &s.nodes[h]
	return n.children[n.mask.Rank(i)]
}

// GetOrInsert implements Store.
func (s *Dense[B]) GetOrInsert(h uint32, i int, mk func() uint32) uint32 {
	n := &s.nodes[h]
	pos := n.mask.Rank(i)
	if n.mask.Get(i) {
		return n.children[pos]
	}
	c := mk()
	n = &s.nodes[h]
	l := len(n.children)
	if l == cap(n.children) {
		grown := make([]uint32, l, 2*l)
		copy(grown, n.children)
		n.children = grown
	}
	n.children = n.children[:l+1]
	copy(n.children[pos+1:], n.children[pos:l])
	n.children[pos] = c
	n.mask, _ = n.mask.SetBit(i, true)
	return c
}

// Replace implements Store.
func (s *Dense[B]) Replace(h uint32, i int, child uint32) {
	n := &s.nodes[h]
	n.children[n.mask.Rank(i)] = child
}

// RemoveUnchecked implements Store.
func (s *Dense[B]) RemoveUnchecked(h uint32, i int) {
	n := &s.nodes[h]
	pos := n.mask.Rank(i)
	l := len(n.children)
	copy(n.children[pos:], n.children[pos+1:l])
	n.children = n.children[:l-1]
	n.mask, _ = n.mask.SetBit(i, false)
}

// Each implements Store.
func (s *Dense[B]) Each(h uint32, f func(i int, child uint32) bool) {
	n := &s.nodes[h]
	k := 0
	n.mask.Traverse(func(i int) bool {
		c := n.children[k]
		k++
		return f(i, c)
	})
}

// Verify implements Store.
func (s *Dense[B]) Verify(h uint32) error {
	if int(h) >= len(s.nodes) {
		return fmt.Errorf("handle %d out of range (%d nodes)", h, len(s.nodes))
	}
	n := &s.nodes[h]
	if n.children == nil {
		return fmt.Errorf("node %d is freed", h)
	}
	count := n.mask.Count()
	if len(n.children) != count+1 {
		return fmt.Errorf("mask holds %d bits but %d children are stored", count, len(n.children)-1)
	}
	if cap(n.children) < count+1 {
		return fmt.Errorf("capacity %d below population %d + 1", cap(n.children), count)
	}
	if last := n.children[count]; last != 0 {
		return fmt.Errorf("trailing sentinel slot holds %d", last)
	}
	for k, c := range n.children[:count] {
		if c == 0 {
			return fmt.Errorf("dense slot %d holds a zero child", k)
		}
	}
	return nil
}

// Live implements Store.
func (s *Dense[B]) Live() int { return s.live }

// Bytes implements Store.
func (s *Dense[B]) Bytes() int {
	var zero denseNode[B]
	total := cap(s.nodes)*int(unsafe.Sizeof(zero)) + cap(s.free)*4
	for i := range s.nodes {
		total += cap(s.nodes[i].children) * 4
	}
	return total
}

// Reset implements Store.
func (s *Dense[B]) Reset() {
	clear(s.nodes)
	s.nodes = s.nodes[:1]
	s.nodes[0] = denseNode[B]{children: []uint32{0}}
	s.free = s.free[:0]
	s.live = 0
}
