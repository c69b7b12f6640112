package bitblock

import "math/bits"

// Block64 is a single-word block.
type Block64 uint64

var _ = Width[Block64]

// Width implements Block.
func (b Block64) Width() int { return 64 }

// IsZero implements Block.
func (b Block64) IsZero() bool { return b == 0 }

// Get implements Block.
func (b Block64) Get(i int) bool { return b>>uint(i)&1 != 0 }

// SetBit implements Block.
func (b Block64) SetBit(i int, v bool) (Block64, bool) {
	m := Block64(1) << uint(i)
	prev := b&m != 0
	if v {
		return b | m, prev
	}
	return b &^ m, prev
}

// Count implements Block.
func (b Block64) Count() int { return bits.OnesCount64(uint64(b)) }

// Rank implements Block.
func (b Block64) Rank(i int) int {
	return bits.OnesCount64(uint64(b) & (uint64(1)<<uint(i) - 1))
}

// And implements Block.
func (b Block64) And(o Block64) Block64 { return b & o }

// Or implements Block.
func (b Block64) Or(o Block64) Block64 { return b | o }

// Traverse implements Block.
func (b Block64) Traverse(f func(i int) bool) bool {
	return traverseWord(uint64(b), 0, f)
}

// Queue implements Block.
func (b Block64) Queue() Queue { return newQueue(uint64(b)) }

func traverseWord(w uint64, base int, f func(i int) bool) bool {
	for w != 0 {
		if !f(base + bits.TrailingZeros64(w)) {
			return false
		}
		w &= w - 1
	}
	return true
}
