package testutil

import (
	"maps"
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Index returns a pseudo-random index in [0, maxIndex].
func (r *RNG) Index(maxIndex uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(maxIndex)
}

func (r *RNG) indexLocked(maxIndex uint64) uint64 {
	if maxIndex == math.MaxUint64 {
		return r.rand.Uint64()
	}
	return r.rand.Uint64() % (maxIndex + 1)
}

// UniformIndices returns n distinct indices in [0, maxIndex], ascending.
// n is capped at the size of the range.
func (r *RNG) UniformIndices(n int, maxIndex uint64) []uint64 {
	if maxIndex < math.MaxInt && uint64(n) > maxIndex+1 {
		n = int(maxIndex + 1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uint64]struct{}, n)
	for len(seen) < n {
		seen[r.indexLocked(maxIndex)] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// ClusteredIndices returns up to n distinct ascending indices in [0, maxIndex]
// grouped in runs around random centers. spread bounds the distance of an
// index from its center.
//
// Clustered indices share long coordinate prefixes, which is the shape that
// exercises node reuse and freeing in a hierarchical bitmap.
func (r *RNG) ClusteredIndices(n, clusters int, spread, maxIndex uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]uint64, clusters)
	for i := range centers {
		centers[i] = r.indexLocked(maxIndex)
	}

	seen := make(map[uint64]struct{}, n)
	for i := range n {
		c := centers[i%clusters]
		off := r.rand.Uint64() % (spread + 1)
		var idx uint64
		if r.rand.Intn(2) == 0 && c >= off {
			idx = c - off
		} else if maxIndex-c >= off {
			idx = c + off
		} else {
			idx = c
		}
		seen[idx] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform over the harmonic weights
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// OpKind is the kind of a workload operation.
type OpKind uint8

const (
	// OpInsert stores Value at Index.
	OpInsert OpKind = iota
	// OpRemove deletes Index.
	OpRemove
	// OpGet looks Index up.
	OpGet
	// OpCheckpoint asks the driver to compare the full contents.
	OpCheckpoint
)

// String returns the name of the operation kind.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpGet:
		return "get"
	case OpCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// Op is one step of a randomized workload.
type Op struct {
	Kind  OpKind
	Index uint64
	Value int
}

// WorkloadConfig shapes a workload generated by Workload.
type WorkloadConfig struct {
	// Ops is the number of operations.
	Ops int
	// MaxIndex bounds the indices.
	MaxIndex uint64
	// HotIndices is the size of the index pool operations draw from with a
	// Zipfian skew, so that removals and repeated inserts hit present keys.
	HotIndices int
	// RemoveRatio and GetRatio are the shares of removals and lookups; the
	// rest are inserts.
	RemoveRatio float64
	GetRatio    float64
	// CheckpointEvery inserts an OpCheckpoint after this many operations.
	// Zero disables checkpoints.
	CheckpointEvery int
}

// Workload generates a randomized insert/remove/get sequence.
func (r *RNG) Workload(cfg WorkloadConfig) []Op {
	pool := r.UniformIndices(max(cfg.HotIndices, 1), cfg.MaxIndex)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Hot indices are spread over the whole range rather than the low end.
	r.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	ops := make([]Op, 0, cfg.Ops+cfg.Ops/max(cfg.CheckpointEvery, 1))
	for i := range cfg.Ops {
		op := Op{Index: pool[r.zipfLocked(len(pool), 1.1)]}
		switch u := r.rand.Float64(); {
		case u < cfg.RemoveRatio:
			op.Kind = OpRemove
		case u < cfg.RemoveRatio+cfg.GetRatio:
			op.Kind = OpGet
		default:
			op.Kind = OpInsert
			op.Value = r.rand.Int()
		}
		ops = append(ops, op)
		if cfg.CheckpointEvery > 0 && (i+1)%cfg.CheckpointEvery == 0 {
			ops = append(ops, Op{Kind: OpCheckpoint})
		}
	}
	return ops
}

// Model is a reference map used to check containers under test.
type Model map[uint64]int

// Apply executes op on the model and returns the value and presence a
// container should report for it. For OpInsert the result is the new value.
func (m Model) Apply(op Op) (int, bool) {
	switch op.Kind {
	case OpInsert:
		m[op.Index] = op.Value
		return op.Value, true
	case OpRemove:
		v, ok := m[op.Index]
		delete(m, op.Index)
		return v, ok
	case OpGet:
		v, ok := m[op.Index]
		return v, ok
	default:
		return 0, false
	}
}

// Keys returns the indices of the model in ascending order.
func (m Model) Keys() []uint64 {
	return slices.Sorted(maps.Keys(m))
}
