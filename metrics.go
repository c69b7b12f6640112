package hitree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see package
// promcollector for a Prometheus implementation.
//
// A collector may be shared by several trees, so implementations must be safe
// for concurrent use.
type MetricsCollector interface {
	// RecordInsert is called after each Insert or GetOrInsert.
	// created is false when the index was already present.
	RecordInsert(created bool)

	// RecordRemove is called after each Remove.
	// found is false when the index was absent.
	RecordRemove(found bool)

	// RecordNodeAlloc is called when a node is allocated at level.
	RecordNodeAlloc(level int)

	// RecordNodeFree is called when an emptied node is released at level.
	RecordNodeFree(level int)

	// RecordMaterialize is called after a view has been materialized.
	RecordMaterialize(count int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(bool)                    {}
func (NoopMetricsCollector) RecordRemove(bool)                    {}
func (NoopMetricsCollector) RecordNodeAlloc(int)                  {}
func (NoopMetricsCollector) RecordNodeFree(int)                   {}
func (NoopMetricsCollector) RecordMaterialize(int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount        atomic.Int64
	InsertCreated      atomic.Int64
	RemoveCount        atomic.Int64
	RemoveMissing      atomic.Int64
	NodeAllocs         atomic.Int64
	NodeFrees          atomic.Int64
	MaterializeCount   atomic.Int64
	MaterializeEntries atomic.Int64
	MaterializeNanos   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(created bool) {
	b.InsertCount.Add(1)
	if created {
		b.InsertCreated.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(found bool) {
	b.RemoveCount.Add(1)
	if !found {
		b.RemoveMissing.Add(1)
	}
}

// RecordNodeAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNodeAlloc(int) {
	b.NodeAllocs.Add(1)
}

// RecordNodeFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNodeFree(int) {
	b.NodeFrees.Add(1)
}

// RecordMaterialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMaterialize(count int, duration time.Duration) {
	b.MaterializeCount.Add(1)
	b.MaterializeEntries.Add(int64(count))
	b.MaterializeNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:         b.InsertCount.Load(),
		InsertCreated:       b.InsertCreated.Load(),
		RemoveCount:         b.RemoveCount.Load(),
		RemoveMissing:       b.RemoveMissing.Load(),
		NodeAllocs:          b.NodeAllocs.Load(),
		NodeFrees:           b.NodeFrees.Load(),
		LiveNodes:           b.NodeAllocs.Load() - b.NodeFrees.Load(),
		MaterializeCount:    b.MaterializeCount.Load(),
		MaterializeEntries:  b.MaterializeEntries.Load(),
		MaterializeAvgNanos: b.getAvgMaterializeNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgMaterializeNanos() int64 {
	count := b.MaterializeCount.Load()
	if count == 0 {
		return 0
	}
	return b.MaterializeNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount         int64
	InsertCreated       int64
	RemoveCount         int64
	RemoveMissing       int64
	NodeAllocs          int64
	NodeFrees           int64
	LiveNodes           int64
	MaterializeCount    int64
	MaterializeEntries  int64
	MaterializeAvgNanos int64
}
