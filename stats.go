package hitree

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/hitree/bitblock"
)

// Stats describes the shape and footprint of a tree.
type Stats struct {
	Len      int
	Depth    int
	Width    int
	Encoding Encoding
	Levels   []LevelStats
}

// LevelStats describes one level of a tree.
type LevelStats struct {
	Level int
	// Nodes is the number of live nodes, the sentinel excluded.
	Nodes int
	// Bytes approximates the memory held by the level's node store.
	Bytes int
}

// Bytes returns the approximate node memory of all levels.
func (s Stats) Bytes() int {
	n := 0
	for _, l := range s.Levels {
		n += l.Bytes
	}
	return n
}

// Stats returns a snapshot of the tree's shape. Value slots are not
// counted in the byte figures.
func (t *Tree[B, V]) Stats() Stats {
	s := Stats{
		Len:      t.Len(),
		Depth:    t.depth,
		Width:    t.width,
		Encoding: t.opts.encoding,
		Levels:   make([]LevelStats, t.depth),
	}
	for l, store := range t.levels {
		s.Levels[l] = LevelStats{Level: l, Nodes: store.Live(), Bytes: store.Bytes()}
	}
	return s
}

// LevelOccupancy returns the union of the masks of every node at level,
// that is the set of coordinates used at that level anywhere in the tree.
// It returns nil if level is out of range.
func (t *Tree[B, V]) LevelOccupancy(level int) *bitset.BitSet {
	if level < 0 || level >= t.depth {
		return nil
	}
	var acc B
	t.eachNode(0, rootHandle, level, func(h uint32) {
		acc = acc.Or(t.levels[level].Mask(h))
	})
	return bitblock.ToBitSet(acc)
}

// eachNode calls f for every node reachable from h that lives at target.
func (t *Tree[B, V]) eachNode(level int, h uint32, target int, f func(h uint32)) {
	if level == target {
		f(h)
		return
	}
	t.levels[level].Each(h, func(_ int, child uint32) bool {
		t.eachNode(level+1, child, target, f)
		return true
	})
}
