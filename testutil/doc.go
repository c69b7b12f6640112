// Package testutil provides testing utilities for hitree.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG, generators for sparse index sets
// and randomized workloads, and a reference Model to check containers
// against.
//
// # Index Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniformIndices(1000, 64*64*64-1)       // distinct, ascending
//	keys = rng.ClusteredIndices(1000, 8, 50, 1<<24-1)  // runs around 8 centers
//
// # Randomized Workloads
//
//	model := testutil.Model{}
//	for _, op := range rng.Workload(testutil.WorkloadConfig{Ops: 10000, MaxIndex: max, HotIndices: 500}) {
//	    want, ok := model.Apply(op)
//	    // apply op to the container and compare with want, ok
//	}
package testutil
