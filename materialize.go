package hitree

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hitree/bitblock"
)

// ctxCheckInterval is how many entries MaterializeAll copies between checks
// of its context.
const ctxCheckInterval = 1024

// Materialize copies every entry of src into a new tree of the same depth.
// The options configure the new tree, so a view over fixed-encoded trees
// may be materialized densely and vice versa.
//
// The slices lent by MultiIntersection and MultiUnion are cloned, so every
// entry of the result owns its slice. Views derived from them, such as a
// Map that passes the slice through, must clone it themselves.
func Materialize[B bitblock.Block[B], V any](src Source[B, V], optFns ...Option) *Tree[B, V] {
	t, _ := materialize(context.Background(), src, optFns)
	return t
}

// lender is implemented by views whose values point into a buffer that
// the cursor reuses.
type lender[V any] interface {
	retain(v V) V
}

func materialize[B bitblock.Block[B], V any](ctx context.Context, src Source[B, V], optFns []Option) (*Tree[B, V], error) {
	start := time.Now()
	t := MustNew[B, V](src.Depth(), optFns...)

	lent, _ := any(src).(lender[V])

	var err error
	it := Iterate(src)
	for n := 1; ; n++ {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		if lent != nil {
			v = lent.retain(v)
		}
		t.Insert(k, v)
		if n%ctxCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
	}

	elapsed := time.Since(start)
	t.logger.LogMaterialize(ctx, t.Len(), elapsed, err)
	if err != nil {
		return nil, err
	}
	t.opts.metricsCollector.RecordMaterialize(t.Len(), elapsed)
	return t, nil
}

// MaterializeAll materializes independent sources concurrently, running at
// most limit copies at a time (no limit if limit <= 0). The sources are only
// read, so they may share underlying trees.
//
// On cancellation of ctx the partial results are dropped and the context's
// error is returned.
func MaterializeAll[B bitblock.Block[B], V any](ctx context.Context, limit int, srcs []Source[B, V], optFns ...Option) ([]*Tree[B, V], error) {
	out := make([]*Tree[B, V], len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range srcs {
		g.Go(func() error {
			t, err := materialize(gctx, src, optFns)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether a and b hold the same indices with values that eq
// considers equal.
func Equal[B bitblock.Block[B], V, W any](a Source[B, V], b Source[B, W], eq func(V, W) bool) bool {
	if a.Depth() != b.Depth() {
		return false
	}
	ia, ib := Iterate(a), Iterate(b)
	for {
		ka, va, oka := ia.Next()
		kb, vb, okb := ib.Next()
		if oka != okb {
			return false
		}
		if !oka {
			return true
		}
		if ka != kb || !eq(va, vb) {
			return false
		}
	}
}

// Len counts the entries of src by traversal.
func Len[B bitblock.Block[B], V any](src Source[B, V]) int {
	if t, ok := src.(*Tree[B, V]); ok {
		return t.Len()
	}
	n := 0
	it := Iterate(src)
	for {
		if _, _, ok := it.Next(); !ok {
			return n
		}
		n++
	}
}
