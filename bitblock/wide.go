package bitblock

import "math/bits"

// Block128 is a two-word block.
type Block128 [2]uint64

// Block256 is a four-word block.
type Block256 [4]uint64

var (
	_ = Width[Block128]
	_ = Width[Block256]
)

// Width implements Block.
func (b Block128) Width() int { return 128 }

// IsZero implements Block.
func (b Block128) IsZero() bool { return b[0]|b[1] == 0 }

// Get implements Block.
func (b Block128) Get(i int) bool { return wordsGet(b[:], i) }

// SetBit implements Block.
func (b Block128) SetBit(i int, v bool) (Block128, bool) {
	prev := wordsSet(b[:], i, v)
	return b, prev
}

// Count implements Block.
func (b Block128) Count() int { return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) }

// Rank implements Block.
func (b Block128) Rank(i int) int { return wordsRank(b[:], i) }

// And implements Block.
func (b Block128) And(o Block128) Block128 { return Block128{b[0] & o[0], b[1] & o[1]} }

// Or implements Block.
func (b Block128) Or(o Block128) Block128 { return Block128{b[0] | o[0], b[1] | o[1]} }

// Traverse implements Block.
func (b Block128) Traverse(f func(i int) bool) bool { return wordsTraverse(b[:], f) }

// Queue implements Block.
func (b Block128) Queue() Queue { return newQueue(b[0], b[1]) }

// Width implements Block.
func (b Block256) Width() int { return 256 }

// IsZero implements Block.
func (b Block256) IsZero() bool { return b[0]|b[1]|b[2]|b[3] == 0 }

// Get implements Block.
func (b Block256) Get(i int) bool { return wordsGet(b[:], i) }

// SetBit implements Block.
func (b Block256) SetBit(i int, v bool) (Block256, bool) {
	prev := wordsSet(b[:], i, v)
	return b, prev
}

// Count implements Block.
func (b Block256) Count() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) +
		bits.OnesCount64(b[2]) + bits.OnesCount64(b[3])
}

// Rank implements Block.
func (b Block256) Rank(i int) int { return wordsRank(b[:], i) }

// And implements Block.
func (b Block256) And(o Block256) Block256 {
	return Block256{b[0] & o[0], b[1] & o[1], b[2] & o[2], b[3] & o[3]}
}

// Or implements Block.
func (b Block256) Or(o Block256) Block256 {
	return Block256{b[0] | o[0], b[1] | o[1], b[2] | o[2], b[3] | o[3]}
}

// Traverse implements Block.
func (b Block256) Traverse(f func(i int) bool) bool { return wordsTraverse(b[:], f) }

// Queue implements Block.
func (b Block256) Queue() Queue { return newQueue(b[0], b[1], b[2], b[3]) }

func wordsGet(ws []uint64, i int) bool {
	return ws[i>>6]>>uint(i&63)&1 != 0
}

func wordsSet(ws []uint64, i int, v bool) bool {
	m := uint64(1) << uint(i&63)
	w := &ws[i>>6]
	prev := *w&m != 0
	if v {
		*w |= m
	} else {
		*w &^= m
	}
	return prev
}

// wordsRank counts set bits below i; i may equal the full width.
func wordsRank(ws []uint64, i int) int {
	wi := i >> 6
	n := 0
	for j := 0; j < wi && j < len(ws); j++ {
		n += bits.OnesCount64(ws[j])
	}
	if wi < len(ws) {
		n += bits.OnesCount64(ws[wi] & (uint64(1)<<uint(i&63) - 1))
	}
	return n
}

func wordsTraverse(ws []uint64, f func(i int) bool) bool {
	for j, w := range ws {
		if !traverseWord(w, j<<6, f) {
			return false
		}
	}
	return true
}
