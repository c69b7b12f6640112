package nodestore

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/hitree/bitblock"
	"github.com/hupe1980/hitree/internal/conv"
)

// Fixed stores nodes with width-sized child arrays in one slab per level.
//
// Node h owns children[h*width : (h+1)*width], indexed directly by position.
// Absent positions always hold 0. A freed node is threaded onto the free list
// through its first child slot, and Alloc reuses freed nodes before growing
// the slab.
type Fixed[B bitblock.Block[B]] struct {
	width    int
	masks    []B
	children []uint32
	free     uint32 // head of the free list; Sentinel when empty
	live     int
}

var _ Store[bitblock.Block64] = (*Fixed[bitblock.Block64])(nil)

// NewFixed returns an empty Fixed store holding only the sentinel.
func NewFixed[B bitblock.Block[B]]() *Fixed[B] {
	w := bitblock.Width[B]()
	return &Fixed[B]{
		width:    w,
		masks:    make([]B, 1),
		children: make([]uint32, w),
	}
}

// Alloc implements Store.
func (s *Fixed[B]) Alloc() uint32 {
	s.live++
	if h := s.free; h != Sentinel {
		off := int(h) * s.width
		s.free = s.children[off]
		s.children[off] = 0
		return h
	}
	h := conv.MustHandle(len(s.masks))
	var zero B
	s.masks = append(s.masks, zero)
	n := len(s.children)
	if cap(s.children)-n < s.width {
		grown := make([]uint32, n, 2*cap(s.children)+s.width)
		copy(grown, s.children)
		s.children = grown
	}
	s.children = s.children[:n+s.width]
	clear(s.children[n:])
	return h
}

// Free implements Store.
func (s *Fixed[B]) Free(h uint32) {
	var zero B
	s.masks[h] = zero
	off := int(h) * s.width
	clear(s.children[off : off+s.width])
	s.children[off] = s.free
	s.free = h
	s.live--
}

// Mask implements Store.
func (s *Fixed[B]) Mask(h uint32) B { return s.masks[h] }

// Contains implements Store.
func (s *Fixed[B]) Contains(h uint32, i int) bool { return s.masks[h].Get(i) }

// GetOrZero implements Store.
func (s *Fixed[B]) GetOrZero(h uint32, i int) uint32 { return s.children[int(h)*s.width+i] }

// Child implements Store.
func (s *Fixed[B]) Child(h uint32, i int) uint32 { return s.children[int(h)*s.width+i] }

// GetOrInsert implements Store.
func (s *Fixed[B]) GetOrInsert(h uint32, i int, mk func() uint32) uint32 {
	off := int(h)*s.width + i
	if c := s.children[off]; c != 0 {
		return c
	}
	c := mk()
	s.masks[h], _ = s.masks[h].SetBit(i, true)
	s.children[off] = c
	return c
}

// Replace implements Store.
func (s *Fixed[B]) Replace(h uint32, i int, child uint32) {
	s.children[int(h)*s.width+i] = child
}

// RemoveUnchecked implements Store.
func (s *Fixed[B]) RemoveUnchecked(h uint32, i int) {
	s.masks[h], _ = s.masks[h].SetBit(i, false)
	s.children[int(h)*s.width+i] = 0
}

// Each implements Store.
func (s *Fixed[B]) Each(h uint32, f func(i int, child uint32) bool) {
	off := int(h) * s.width
	s.masks[h].Traverse(func(i int) bool {
		return f(i, s.children[off+i])
	})
}

// Verify implements Store.
func (s *Fixed[B]) Verify(h uint32) error {
	if int(h) >= len(s.masks) {
		return fmt.Errorf("handle %d out of range (%d nodes)", h, len(s.masks))
	}
	m := s.masks[h]
	off := int(h) * s.width
	for i := 0; i < s.width; i++ {
		c := s.children[off+i]
		if m.Get(i) && c == 0 {
			return fmt.Errorf("position %d set in mask but child is zero", i)
		}
		if !m.Get(i) && c != 0 {
			return fmt.Errorf("position %d clear in mask but child is %d", i, c)
		}
	}
	return nil
}

// Live implements Store.
func (s *Fixed[B]) Live() int { return s.live }

// Bytes implements Store.
func (s *Fixed[B]) Bytes() int {
	var zero B
	return cap(s.masks)*int(unsafe.Sizeof(zero)) + cap(s.children)*4
}

// Reset implements Store.
func (s *Fixed[B]) Reset() {
	var zero B
	s.masks = append(s.masks[:0], zero)
	s.children = s.children[:s.width]
	clear(s.children)
	s.free = Sentinel
	s.live = 0
}
