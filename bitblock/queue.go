package bitblock

import "math/bits"

// maxWords is the number of words of the widest block.
const maxWords = 4

// Queue pops the set bits of a block, lowest first.
//
// A Queue is a plain value; copying it forks the traversal.
type Queue struct {
	words [maxWords]uint64
	n     int // words in use
	cur   int // first word that may still hold bits
}

func newQueue(words ...uint64) Queue {
	q := Queue{n: len(words)}
	copy(q.words[:], words)
	return q
}

// Next removes the lowest set bit and returns its position.
// The second result is false once the queue is exhausted.
func (q *Queue) Next() (int, bool) {
	for q.cur < q.n {
		w := q.words[q.cur]
		if w != 0 {
			q.words[q.cur] = w & (w - 1)
			return q.cur<<6 + bits.TrailingZeros64(w), true
		}
		q.cur++
	}
	return 0, false
}

// TrimTo clears every bit below position n.
func (q *Queue) TrimTo(n int) {
	if n <= 0 {
		return
	}
	wi := n >> 6
	if wi >= q.n {
		for i := q.cur; i < q.n; i++ {
			q.words[i] = 0
		}
		q.cur = q.n
		return
	}
	for i := q.cur; i < wi; i++ {
		q.words[i] = 0
	}
	if q.cur < wi {
		q.cur = wi
	}
	q.words[wi] &^= uint64(1)<<uint(n&63) - 1
}

// IsEmpty reports whether no bits remain.
func (q *Queue) IsEmpty() bool {
	for i := q.cur; i < q.n; i++ {
		if q.words[i] != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of bits remaining.
func (q *Queue) Len() int {
	n := 0
	for i := q.cur; i < q.n; i++ {
		n += bits.OnesCount64(q.words[i])
	}
	return n
}
