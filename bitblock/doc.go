// Package bitblock provides the fixed-width bit vectors used as node masks.
//
// A block is a small value type (one to four machine words). Every block type
// implements the same method set, captured by the generic constraint Block, so
// code written against Block[B] works for any width. The width of a block is a
// configuration constant: trees composed together must share the same block
// type.
//
// # Widths
//
//	Block64   one uint64    coordinates 0..63
//	Block128  two uint64    coordinates 0..127
//	Block256  four uint64   coordinates 0..255
//
// # Bit queues
//
// Queue turns a block into a stateful cursor over its set bits. Next pops the
// lowest set bit; TrimTo discards every bit below a position, which is how an
// interrupted traversal resumes mid-block:
//
//	q := b.Queue()
//	q.TrimTo(17)
//	for i, ok := q.Next(); ok; i, ok = q.Next() {
//	    // i >= 17, ascending
//	}
package bitblock
