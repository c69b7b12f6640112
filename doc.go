// Package hitree provides a sparse map from dense uint64 indices to values,
// stored as a hierarchical bitmap-indexed tree, together with lazy set
// algebra over such trees.
//
// An index is split into Depth coordinates of log2(Width) bits each, most
// significant first. Every node carries a bit mask of the coordinates
// present below it, so lookups and ordered traversal only touch populated
// branches. The width is a type parameter (bitblock.Block64, Block128 or
// Block256); the depth is chosen at construction.
//
// # Quick Start
//
//	t := hitree.MustNew[bitblock.Block64, string](3) // indices 0 .. 64^3-1
//	t.Insert(10, "ten")
//	t.Insert(4000, "four thousand")
//
//	v, ok := t.Get(10)        // "ten", true
//	_, ok = t.Get(11)         // "", false
//	t.Remove(4000)            // "four thousand", true
//
//	for k, v := range t.All() {
//	    fmt.Println(k, v)     // ascending index order
//	}
//
// # Encodings
//
// Nodes are stored per level in one of two encodings, chosen with
// WithEncoding:
//
//   - EncodingDense (default): each node holds exactly its present children.
//   - EncodingFixed: each node holds a child slot for every coordinate, carved
//     out of a per-level slab with free-list recycling.
//
// # Views
//
// Tree implements Source. The combinators Map, Intersection, Union,
// MultiIntersection, MultiUnion and Fold take sources and return sources,
// so expressions compose without copying anything:
//
//	both := hitree.Intersection(a, b, func(x, y int) int { return x + y })
//	either := hitree.Union(a, b, func(x, y *int) int {
//	    if x != nil {
//	        return *x
//	    }
//	    return *y
//	})
//	for k, v := range both.All() { ... }
//
// Views are evaluated on every read. Materialize copies a view into a new
// Tree; MaterializeAll does so for many views concurrently.
//
// Multi views yield a []V that is reused between reads. Wrap them with
// Map(view, slices.Clone) to keep the slices.
//
// # Concurrency
//
// A Tree has no internal locking. Any number of goroutines may read a tree
// and views over it at the same time, but a mutation needs exclusive access.
//
// # Observability
//
// Trees accept a Logger (WithLogger, WithLogLevel) and a MetricsCollector
// (WithMetricsCollector). Package promcollector exports the metrics to
// Prometheus. Validate checks the structural invariants of a tree and Stats
// reports its per-level footprint.
package hitree
