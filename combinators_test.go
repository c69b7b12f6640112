package hitree

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hitree/bitblock"
	"github.com/hupe1980/hitree/testutil"
)

type tree64 = Tree[bitblock.Block64, int]

func build(t *testing.T, enc Encoding, depth int, keys []uint64, val func(uint64) int) *tree64 {
	t.Helper()
	tr := MustNew[bitblock.Block64, int](depth, WithEncoding(enc))
	for _, k := range keys {
		tr.Insert(k, val(k))
	}
	return tr
}

func roaringOf(keys []uint64) *roaring64.Bitmap {
	bm := roaring64.New()
	bm.AddMany(keys)
	return bm
}

func TestIntersection(t *testing.T) {
	for _, enc := range encodings {
		t.Run(enc.String(), func(t *testing.T) {
			a := build(t, enc, 3, []uint64{1, 2, 64, 4096, 5000, 262143}, func(k uint64) int { return int(k) })
			b := build(t, EncodingDense, 3, []uint64{2, 3, 4096, 4097, 262143}, func(k uint64) int { return 10 * int(k) })

			v := Intersection(a, b, func(x, y int) int { return x + y })
			assert.False(t, v.Exact())
			assert.Equal(t, 3, v.Depth())

			keys, vals := collect(v.All())
			assert.Equal(t, []uint64{2, 4096, 262143}, keys)
			assert.Equal(t, []int{22, 45056, 2883573}, vals)

			for _, k := range []uint64{0, 1, 2, 3, 64, 4096, 4097, 5000, 262143} {
				x, okA := a.Get(k)
				y, okB := b.Get(k)
				got, ok := v.Get(k)
				require.Equal(t, okA && okB, ok, "index %d", k)
				if ok {
					assert.Equal(t, x+y, got)
				}
				assert.Equal(t, ok, Contains[bitblock.Block64, int](v, k))
			}
		})
	}
}

func TestIntersectionInexactMasks(t *testing.T) {
	// Both sides populate the same level-1 node coordinates, but never the
	// same leaf, so every intermediate AND is non-empty while the result is.
	a := build(t, EncodingDense, 3, []uint64{0, 64, 128}, func(uint64) int { return 1 })
	b := build(t, EncodingFixed, 3, []uint64{1, 65, 129}, func(uint64) int { return 2 })

	v := Intersection(a, b, func(x, y int) int { return x * y })
	keys, _ := collect(v.All())
	assert.Empty(t, keys)
	assert.Equal(t, 0, Len[bitblock.Block64, int](v))
	assert.Equal(t, 0, Materialize[bitblock.Block64, int](v).Len())
}

func TestUnion(t *testing.T) {
	a := build(t, EncodingDense, 3, []uint64{1, 2, 4096}, func(k uint64) int { return int(k) })
	b := build(t, EncodingFixed, 3, []uint64{2, 3, 262143}, func(k uint64) int { return 100 })

	type pair struct {
		a, b int
		hasA bool
		hasB bool
	}
	v := Union(a, b, func(x, y *int) pair {
		var p pair
		if x != nil {
			p.a, p.hasA = *x, true
		}
		if y != nil {
			p.b, p.hasB = *y, true
		}
		return p
	})
	assert.True(t, v.Exact())

	keys, vals := collect(v.All())
	assert.Equal(t, []uint64{1, 2, 3, 4096, 262143}, keys)
	assert.Equal(t, []pair{
		{a: 1, hasA: true},
		{a: 2, b: 100, hasA: true, hasB: true},
		{b: 100, hasB: true},
		{a: 4096, hasA: true},
		{b: 100, hasB: true},
	}, vals)

	_, ok := v.Get(5)
	assert.False(t, ok)
	p, ok := v.Get(3)
	require.True(t, ok)
	assert.Equal(t, pair{b: 100, hasB: true}, p)
}

func TestUnionOfInexactIsInexact(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{0, 1}, func(uint64) int { return 1 })
	b := build(t, EncodingDense, 2, []uint64{1, 2}, func(uint64) int { return 2 })
	c := build(t, EncodingDense, 2, []uint64{70}, func(uint64) int { return 3 })

	inter := Intersection(a, b, func(x, y int) int { return x + y })
	v := Union(inter, c, func(x, y *int) int {
		if x != nil {
			return *x
		}
		return *y
	})
	assert.False(t, v.Exact())

	keys, vals := collect(v.All())
	assert.Equal(t, []uint64{1, 70}, keys)
	assert.Equal(t, []int{3, 3}, vals)
}

func TestMultiIntersection(t *testing.T) {
	a := build(t, EncodingDense, 3, []uint64{1, 5, 64, 4096, 9000}, func(k uint64) int { return 1 })
	b := build(t, EncodingFixed, 3, []uint64{5, 64, 4096, 9001}, func(k uint64) int { return 2 })
	c := build(t, EncodingDense, 3, []uint64{0, 5, 4096, 9000}, func(k uint64) int { return 3 })

	v := MultiIntersection[bitblock.Block64, int](a, b, c)
	assert.False(t, v.Exact())

	got, ok := v.Get(5)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, ok = v.Get(64)
	assert.False(t, ok)
	_, ok = v.Get(9000)
	assert.False(t, ok)

	var keys []uint64
	for k, vs := range v.All() {
		keys = append(keys, k)
		assert.Equal(t, []int{1, 2, 3}, vs)
	}
	assert.Equal(t, []uint64{5, 4096}, keys)
}

func TestMultiIntersectionEmptyBranches(t *testing.T) {
	// The middle branch is shared down to the last level, where the three
	// masks no longer overlap. Its empty fold must not leak into the next
	// branch.
	a := build(t, EncodingDense, 3, []uint64{10, 4096 + 10, 2 * 4096}, func(uint64) int { return 1 })
	b := build(t, EncodingDense, 3, []uint64{10, 4096 + 11, 2 * 4096}, func(uint64) int { return 2 })
	c := build(t, EncodingDense, 3, []uint64{10, 4096 + 12, 2 * 4096}, func(uint64) int { return 3 })

	v := MultiIntersection[bitblock.Block64, int](a, b, c)
	keys, _ := collect(v.All())
	assert.Equal(t, []uint64{10, 2 * 4096}, keys)

	_, ok := v.Get(4096 + 10)
	assert.False(t, ok)
}

func TestMultiUnion(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{1, 100}, func(uint64) int { return 1 })
	b := build(t, EncodingFixed, 2, []uint64{2, 100}, func(uint64) int { return 2 })
	c := build(t, EncodingDense, 2, []uint64{1, 4095}, func(uint64) int { return 3 })

	v := MultiUnion[bitblock.Block64, int](a, b, c)
	assert.True(t, v.Exact())

	got := map[uint64][]int{}
	for k, vs := range v.All() {
		got[k] = slices.Clone(vs)
	}
	assert.Equal(t, map[uint64][]int{
		1:    {1, 3},
		2:    {2},
		100:  {1, 2},
		4095: {3},
	}, got)

	_, ok := v.Get(3)
	assert.False(t, ok)
}

func TestMultiEmpty(t *testing.T) {
	mi := MultiIntersection[bitblock.Block64, int]()
	mu := MultiUnion[bitblock.Block64, int]()

	assert.Equal(t, 1, mi.Depth())
	assert.Equal(t, 1, mu.Depth())
	assert.Equal(t, 0, Len[bitblock.Block64, []int](mi))
	assert.Equal(t, 0, Len[bitblock.Block64, []int](mu))
	_, ok := mi.Get(0)
	assert.False(t, ok)
}

func TestFold(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{1, 2, 3}, func(k uint64) int { return int(k) })
	b := build(t, EncodingDense, 2, []uint64{2, 3, 4}, func(k uint64) int { return 10 * int(k) })
	c := build(t, EncodingFixed, 2, []uint64{3, 4, 5}, func(k uint64) int { return 100 * int(k) })

	sum := func(acc, v int) int { return acc + v }

	u := Fold[bitblock.Block64](MultiUnion[bitblock.Block64, int](a, b, c), 0, sum)
	assert.True(t, u.Exact())
	keys, vals := collect(u.All())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, keys)
	assert.Equal(t, []int{1, 22, 333, 440, 500}, vals)

	i := Fold[bitblock.Block64](MultiIntersection[bitblock.Block64, int](a, b, c), 1000, sum)
	assert.False(t, i.Exact())
	keys, vals = collect(i.All())
	assert.Equal(t, []uint64{3}, keys)
	assert.Equal(t, []int{1333}, vals)
}

func TestMap(t *testing.T) {
	tr := build(t, EncodingDense, 3, []uint64{7, 700, 70000}, func(k uint64) int { return int(k) })

	m := Map(tr, func(v int) string { return string(rune('a' + v%26)) })
	assert.True(t, m.Exact())
	assert.Equal(t, 3, m.Depth())

	s, ok := m.Get(700)
	require.True(t, ok)
	assert.Equal(t, string(rune('a'+700%26)), s)

	mat := Materialize[bitblock.Block64, string](m, WithEncoding(EncodingFixed))
	assert.Equal(t, EncodingFixed, mat.Encoding())
	assert.True(t, Equal[bitblock.Block64](tr, mat, func(v int, s string) bool {
		return string(rune('a'+v%26)) == s
	}))
	require.NoError(t, mat.Validate())
}

func TestMapRetainsMultiSlices(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{1, 2}, func(uint64) int { return 1 })
	b := build(t, EncodingDense, 2, []uint64{1, 2}, func(uint64) int { return 2 })

	kept := Materialize[bitblock.Block64, []int](Map(MultiUnion[bitblock.Block64, int](a, b), slices.Clone[[]int]))
	v1, _ := kept.Get(1)
	v2, _ := kept.Get(2)
	assert.Equal(t, []int{1, 2}, v1)
	assert.Equal(t, []int{1, 2}, v2)
	v1[0] = 9
	assert.Equal(t, 1, v2[0])
}

func TestMaterializeMultiViews(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{1, 2}, func(k uint64) int { return int(k) * 10 })
	b := build(t, EncodingFixed, 2, []uint64{1, 2, 3}, func(k uint64) int { return int(k)*10 + 1 })

	t.Run("MultiIntersection", func(t *testing.T) {
		got := Materialize[bitblock.Block64, []int](MultiIntersection[bitblock.Block64, int](a, b))
		require.Equal(t, 2, got.Len())
		v1, _ := got.Get(1)
		v2, _ := got.Get(2)
		assert.Equal(t, []int{10, 11}, v1)
		assert.Equal(t, []int{20, 21}, v2)

		v1[0] = 99
		v2, _ = got.Get(2)
		assert.Equal(t, []int{20, 21}, v2)
	})

	t.Run("MultiUnion", func(t *testing.T) {
		got := Materialize[bitblock.Block64, []int](MultiUnion[bitblock.Block64, int](a, b))
		require.Equal(t, 3, got.Len())
		v1, _ := got.Get(1)
		v3, _ := got.Get(3)
		assert.Equal(t, []int{10, 11}, v1)
		assert.Equal(t, []int{31}, v3)
	})

	t.Run("MaterializeAll", func(t *testing.T) {
		views := []Source[bitblock.Block64, []int]{
			MultiIntersection[bitblock.Block64, int](a, b),
			MultiUnion[bitblock.Block64, int](b, a),
		}
		out, err := MaterializeAll(t.Context(), 2, views)
		require.NoError(t, err)
		v1, _ := out[0].Get(1)
		assert.Equal(t, []int{10, 11}, v1)
		v2, _ := out[1].Get(2)
		assert.Equal(t, []int{21, 20}, v2)
		v3, _ := out[1].Get(3)
		assert.Equal(t, []int{31}, v3)
	})
}

func TestDepthMismatchPanics(t *testing.T) {
	a := MustNew[bitblock.Block64, int](2)
	b := MustNew[bitblock.Block64, int](3)

	check := func(f func()) {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.True(t, errors.Is(err, ErrDepthMismatch))
		}()
		f()
	}
	check(func() { Intersection(a, b, func(x, y int) int { return x }) })
	check(func() { Union(a, b, func(x, y *int) int { return 0 }) })
	check(func() { MultiIntersection[bitblock.Block64, int](a, a, b) })
	check(func() { MultiUnion[bitblock.Block64, int](b, a) })
}

// TestSetAlgebraAgainstRoaring composes randomized trees and compares the
// key sets of every view with the corresponding roaring bitmap operation.
func TestSetAlgebraAgainstRoaring(t *testing.T) {
	rng := testutil.NewRNG(42)
	const depth = 3
	maxIndex := MustNew[bitblock.Block64, int](depth).MaxIndex()

	for round := range 5 {
		ka := rng.ClusteredIndices(800, 6, 3000, maxIndex)
		kb := rng.ClusteredIndices(800, 6, 3000, maxIndex)
		kc := append(rng.UniformIndices(300, maxIndex), ka[:len(ka)/2]...)
		slices.Sort(kc)
		kc = slices.Compact(kc)

		a := build(t, encodings[round%2], depth, ka, func(uint64) int { return 1 })
		b := build(t, encodings[(round+1)%2], depth, kb, func(uint64) int { return 2 })
		c := build(t, EncodingDense, depth, kc, func(uint64) int { return 4 })
		ra, rb, rc := roaringOf(ka), roaringOf(kb), roaringOf(kc)

		and := Intersection(a, b, func(x, y int) int { return x | y })
		assert.Equal(t, roaring64.And(ra, rb).ToArray(), KeySet[bitblock.Block64, int](and).ToArray())

		or := Union(a, b, func(x, y *int) int { return 0 })
		assert.Equal(t, roaring64.Or(ra, rb).ToArray(), KeySet[bitblock.Block64, int](or).ToArray())

		multiAnd := MultiIntersection[bitblock.Block64, int](a, b, c)
		want := roaring64.And(roaring64.And(ra, rb), rc)
		assert.Equal(t, want.ToArray(), KeySet[bitblock.Block64, []int](multiAnd).ToArray())

		multiOr := Fold[bitblock.Block64](MultiUnion[bitblock.Block64, int](a, b, c), 0, func(acc, v int) int { return acc | v })
		wantOr := roaring64.Or(roaring64.Or(ra, rb), rc)
		assert.Equal(t, wantOr.ToArray(), KeySet[bitblock.Block64, int](multiOr).ToArray())
		for k, bits := range multiOr.All() {
			want := 0
			if ra.Contains(k) {
				want |= 1
			}
			if rb.Contains(k) {
				want |= 2
			}
			if rc.Contains(k) {
				want |= 4
			}
			require.Equal(t, want, bits, "index %d", k)
		}

		// Nested views compose without materialization.
		nested := Intersection(or, c, func(x, y int) int { return y })
		assert.Equal(t, roaring64.And(roaring64.Or(ra, rb), rc).ToArray(), KeySet[bitblock.Block64, int](nested).ToArray())

		// AllFrom over an inexact view.
		from := ka[len(ka)/2]
		var wantFrom []uint64
		for _, k := range roaring64.And(ra, rb).ToArray() {
			if k >= from {
				wantFrom = append(wantFrom, k)
			}
		}
		gotFrom, _ := collect(AllFrom[bitblock.Block64, int](and, from))
		assert.Equal(t, wantFrom, gotFrom)
	}
}

func TestMaterializeAll(t *testing.T) {
	a := build(t, EncodingDense, 3, []uint64{1, 2, 3, 70000}, func(k uint64) int { return int(k) })
	b := build(t, EncodingFixed, 3, []uint64{2, 3, 4, 70000}, func(k uint64) int { return int(k) })

	srcs := []Source[bitblock.Block64, int]{
		Intersection(a, b, func(x, y int) int { return x + y }),
		Union(a, b, func(x, y *int) int { return 1 }),
		Map(a, func(v int) int { return -v }),
		a,
	}

	trees, err := MaterializeAll(context.Background(), 2, srcs, WithEncoding(EncodingFixed))
	require.NoError(t, err)
	require.Len(t, trees, len(srcs))
	for i, tr := range trees {
		assert.Equal(t, EncodingFixed, tr.Encoding())
		assert.True(t, Equal(srcs[i], tr, func(x, y int) bool { return x == y }), "source %d", i)
		require.NoError(t, tr.Validate())
	}
	assert.Equal(t, 3, trees[0].Len())
	assert.Equal(t, 5, trees[1].Len())
}

func TestMaterializeAllCanceled(t *testing.T) {
	keys := testutil.NewRNG(3).UniformIndices(5000, 262143)
	a := build(t, EncodingDense, 3, keys, func(uint64) int { return 0 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trees, err := MaterializeAll(ctx, 0, []Source[bitblock.Block64, int]{a, a})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, trees)
}

func TestEqualAndLen(t *testing.T) {
	a := build(t, EncodingDense, 2, []uint64{1, 2}, func(k uint64) int { return int(k) })
	b := build(t, EncodingFixed, 2, []uint64{1, 2}, func(k uint64) int { return int(k) })
	c := build(t, EncodingFixed, 2, []uint64{1, 3}, func(k uint64) int { return int(k) })
	d := MustNew[bitblock.Block64, int](3)

	eq := func(x, y int) bool { return x == y }
	assert.True(t, Equal[bitblock.Block64](a, b, eq))
	assert.False(t, Equal[bitblock.Block64](a, c, eq))
	assert.False(t, Equal[bitblock.Block64](a, d, eq))
	b.Insert(2, 5)
	assert.False(t, Equal[bitblock.Block64](a, b, eq))

	assert.Equal(t, 2, Len[bitblock.Block64, int](a))
	assert.Equal(t, 1, Len[bitblock.Block64, int](Intersection(a, c, func(x, y int) int { return 0 })))
}

func TestIterator(t *testing.T) {
	tr := build(t, EncodingDense, 2, []uint64{3, 64, 4095}, func(k uint64) int { return int(k) })

	it := Iterate[bitblock.Block64, int](tr)
	for _, want := range []uint64{3, 64, 4095} {
		k, v, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, want, k)
		assert.Equal(t, int(want), v)
	}
	_, _, ok := it.Next()
	assert.False(t, ok)
	_, _, ok = it.Next()
	assert.False(t, ok)

	it = IterateFrom[bitblock.Block64, int](tr, 4096)
	_, _, ok = it.Next()
	assert.False(t, ok)

	it = IterateFrom[bitblock.Block64, int](tr, 65)
	k, _, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(4095), k)
}
