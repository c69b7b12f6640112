package hitree

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/hitree/bitblock"
)

// KeySet returns the indices present in src as a roaring bitmap.
//
// Indices arrive in ascending order, so the bitmap is filled by appending.
func KeySet[B bitblock.Block[B], V any](src Source[B, V]) *roaring64.Bitmap {
	if t, ok := src.(*Tree[B, V]); ok {
		return t.KeySet()
	}
	bm := roaring64.New()
	it := Iterate(src)
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		bm.Add(k)
	}
	bm.RunOptimize()
	return bm
}

// KeySet returns the indices present in t as a roaring bitmap. It reads the
// key array directly and does not traverse the tree.
func (t *Tree[B, V]) KeySet() *roaring64.Bitmap {
	bm := roaring64.New()
	bm.AddMany(t.keys[1:])
	bm.RunOptimize()
	return bm
}

// FromKeySet builds a tree holding fn(k) for every index k in bm.
//
// It returns an error wrapping ErrIndexOutOfRange if bm holds an index
// beyond the capacity of the tree.
func FromKeySet[B bitblock.Block[B], V any](depth int, bm *roaring64.Bitmap, fn func(uint64) V, optFns ...Option) (*Tree[B, V], error) {
	n := bm.GetCardinality()
	optFns = append([]Option{WithInitialCapacity(int(n))}, optFns...)
	t, err := New[B, V](depth, optFns...)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return t, nil
	}
	if maxKey := bm.Maximum(); !t.inRange(maxKey) {
		return nil, &ErrIndex{Index: maxKey, MaxIndex: t.MaxIndex()}
	}

	it := bm.Iterator()
	for it.HasNext() {
		k := it.Next()
		t.Insert(k, fn(k))
	}
	return t, nil
}
