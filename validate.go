package hitree

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/hitree/bitblock"
)

// Validate checks the structural invariants of t and returns every
// violation found, joined with errors.Join. Each violation is an
// *ErrInvariant, so errors.Is(err, ErrCorrupt) holds for any non-nil result.
//
// Validate walks the whole tree and is meant for tests and debugging.
func (t *Tree[B, V]) Validate() error {
	v := validator[B, V]{t: t, nodes: make([]int, t.depth)}
	v.walk(0, rootHandle, 0)

	if n := len(t.keys); n != len(t.values) || n != len(t.back) {
		v.fail(-1, 0, fmt.Sprintf("slot arrays differ in length: values %d, keys %d, back %d", len(t.values), n, len(t.back)))
	}
	if len(t.keys) > 0 && t.keys[0] != sentinelKey {
		v.fail(-1, 0, "sentinel slot holds a key")
	}
	if v.entries != t.Len() {
		v.fail(t.depth-1, 0, fmt.Sprintf("%d reachable entries, %d value slots", v.entries, t.Len()))
	}
	for level, s := range t.levels {
		if v.nodes[level] != s.Live() {
			v.fail(level, 0, fmt.Sprintf("%d reachable nodes, %d allocated", v.nodes[level], s.Live()))
		}
	}

	err := errors.Join(v.errs...)
	t.logger.LogValidate(context.Background(), v.entries, err)
	return err
}

type validator[B bitblock.Block[B], V any] struct {
	t       *Tree[B, V]
	nodes   []int
	entries int
	errs    []error
}

func (v *validator[B, V]) fail(level int, node uint32, reason string) {
	v.errs = append(v.errs, &ErrInvariant{Level: level, Node: node, Reason: reason})
}

func (v *validator[B, V]) walk(level int, h uint32, prefix uint64) {
	t := v.t
	s := t.levels[level]
	v.nodes[level]++

	if err := s.Verify(h); err != nil {
		v.fail(level, h, err.Error())
		return
	}
	if level > 0 && s.Mask(h).IsZero() {
		v.fail(level, h, "empty node is still linked")
	}

	last := level == t.depth-1
	s.Each(h, func(i int, child uint32) bool {
		index := prefix<<t.shift | uint64(i)
		if !last {
			v.walk(level+1, child, index)
			return true
		}

		v.entries++
		if int(child) >= len(t.values) {
			v.fail(level, h, fmt.Sprintf("coord %d points past the value slots (slot %d)", i, child))
			return true
		}
		if t.keys[child] != index {
			v.fail(level, h, fmt.Sprintf("slot %d holds key %d, reached by index %d", child, t.keys[child], index))
		}
		if ref := t.back[child]; ref.node != h || int(ref.coord) != i {
			v.fail(level, h, fmt.Sprintf("slot %d back-pointer is (%d, %d), want (%d, %d)", child, ref.node, ref.coord, h, i))
		}
		return true
	})
}
