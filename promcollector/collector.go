// Package promcollector exports hitree metrics to Prometheus.
package promcollector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/hitree"
)

// Collector implements hitree.MetricsCollector on Prometheus metrics.
type Collector struct {
	inserts         *prometheus.CounterVec
	removes         *prometheus.CounterVec
	nodeAllocs      *prometheus.CounterVec
	nodeFrees       *prometheus.CounterVec
	liveNodes       *prometheus.GaugeVec
	materialized    prometheus.Counter
	materializeTime prometheus.Histogram
}

var _ hitree.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. namespace
// prefixes every metric name and may be empty.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hitree_inserts_total",
			Help:      "Insert operations, by whether a new entry was created.",
		}, []string{"created"}),
		removes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hitree_removes_total",
			Help:      "Remove operations, by whether the index was present.",
		}, []string{"found"}),
		nodeAllocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hitree_node_allocs_total",
			Help:      "Nodes allocated, by tree level.",
		}, []string{"level"}),
		nodeFrees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hitree_node_frees_total",
			Help:      "Emptied nodes released, by tree level.",
		}, []string{"level"}),
		liveNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hitree_live_nodes",
			Help:      "Allocated minus released nodes, by tree level.",
		}, []string{"level"}),
		materialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hitree_materialized_entries_total",
			Help:      "Entries copied by Materialize.",
		}),
		materializeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hitree_materialize_duration_seconds",
			Help:      "Duration of Materialize calls.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}

	for _, m := range []prometheus.Collector{
		c.inserts,
		c.removes,
		c.nodeAllocs,
		c.nodeFrees,
		c.liveNodes,
		c.materialized,
		c.materializeTime,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics if registration fails.
func MustNew(reg prometheus.Registerer, namespace string) *Collector {
	c, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

// RecordInsert implements hitree.MetricsCollector.
func (c *Collector) RecordInsert(created bool) {
	c.inserts.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// RecordRemove implements hitree.MetricsCollector.
func (c *Collector) RecordRemove(found bool) {
	c.removes.WithLabelValues(strconv.FormatBool(found)).Inc()
}

// RecordNodeAlloc implements hitree.MetricsCollector.
func (c *Collector) RecordNodeAlloc(level int) {
	l := strconv.Itoa(level)
	c.nodeAllocs.WithLabelValues(l).Inc()
	c.liveNodes.WithLabelValues(l).Inc()
}

// RecordNodeFree implements hitree.MetricsCollector.
func (c *Collector) RecordNodeFree(level int) {
	l := strconv.Itoa(level)
	c.nodeFrees.WithLabelValues(l).Inc()
	c.liveNodes.WithLabelValues(l).Dec()
}

// RecordMaterialize implements hitree.MetricsCollector.
func (c *Collector) RecordMaterialize(count int, duration time.Duration) {
	c.materialized.Add(float64(count))
	c.materializeTime.Observe(duration.Seconds())
}
