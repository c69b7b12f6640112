package bitblock

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// Block is the constraint satisfied by every block type.
//
// All methods have value receivers. Mutating operations return the updated
// block instead of modifying the receiver.
type Block[B any] interface {
	comparable

	// Width returns the number of bits in the block.
	Width() int
	// IsZero reports whether no bit is set.
	IsZero() bool
	// Get reports whether bit i is set.
	Get(i int) bool
	// SetBit sets bit i to v and returns the updated block and the previous value of the bit.
	SetBit(i int, v bool) (B, bool)
	// Count returns the number of set bits.
	Count() int
	// Rank returns the number of set bits strictly below position i.
	Rank(i int) int
	// And returns the intersection of both blocks.
	And(o B) B
	// Or returns the union of both blocks.
	Or(o B) B
	// Traverse calls f for every set bit in ascending order until f returns false.
	// It reports whether the traversal ran to completion.
	Traverse(f func(i int) bool) bool
	// Queue returns a bit queue holding the set bits of the block.
	Queue() Queue
}

// Width returns the width of block type B.
func Width[B Block[B]]() int {
	var b B
	return b.Width()
}

// Shift returns log2 of the width of block type B.
func Shift[B Block[B]]() uint {
	return uint(bits.TrailingZeros(uint(Width[B]())))
}

// Of returns a block of type B with the given bits set.
func Of[B Block[B]](positions ...int) B {
	var b B
	for _, p := range positions {
		b, _ = b.SetBit(p, true)
	}
	return b
}

// Positions returns the set bits of b in ascending order.
func Positions[B Block[B]](b B) []int {
	out := make([]int, 0, b.Count())
	b.Traverse(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}

// ToBitSet copies b into a bitset of the block's width.
func ToBitSet[B Block[B]](b B) *bitset.BitSet {
	bs := bitset.New(uint(b.Width()))
	b.Traverse(func(i int) bool {
		bs.Set(uint(i))
		return true
	})
	return bs
}
