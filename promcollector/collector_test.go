package promcollector

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hitree"
	"github.com/hupe1980/hitree/bitblock"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func labeled(mf *dto.MetricFamily, name, value string) *dto.Metric {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m
			}
		}
	}
	return nil
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "test")
	require.NoError(t, err)

	tree := hitree.MustNew[bitblock.Block64, int](2, hitree.WithMetricsCollector(c))
	tree.Insert(1, 1)
	tree.Insert(1, 2)
	tree.Insert(100, 3)
	_, _ = tree.Remove(100)
	_, _ = tree.Remove(5)
	_ = hitree.Materialize[bitblock.Block64, int](tree, hitree.WithMetricsCollector(c))

	mfs := gather(t, reg)

	t.Run("inserts", func(t *testing.T) {
		mf := mfs["test_hitree_inserts_total"]
		require.NotNil(t, mf)
		// The materialized copy inserts one more new entry.
		assert.Equal(t, 3.0, labeled(mf, "created", "true").GetCounter().GetValue())
		assert.Equal(t, 1.0, labeled(mf, "created", "false").GetCounter().GetValue())
	})

	t.Run("removes", func(t *testing.T) {
		mf := mfs["test_hitree_removes_total"]
		require.NotNil(t, mf)
		assert.Equal(t, 1.0, labeled(mf, "found", "true").GetCounter().GetValue())
		assert.Equal(t, 1.0, labeled(mf, "found", "false").GetCounter().GetValue())
	})

	t.Run("nodes", func(t *testing.T) {
		// Index 1 and 100 live under different level-1 nodes; removing 100
		// frees its node again. The copy allocates one more.
		allocs := labeled(mfs["test_hitree_node_allocs_total"], "level", "1")
		frees := labeled(mfs["test_hitree_node_frees_total"], "level", "1")
		live := labeled(mfs["test_hitree_live_nodes"], "level", "1")
		assert.Equal(t, 3.0, allocs.GetCounter().GetValue())
		assert.Equal(t, 1.0, frees.GetCounter().GetValue())
		assert.Equal(t, 2.0, live.GetGauge().GetValue())
	})

	t.Run("materialize", func(t *testing.T) {
		mf := mfs["test_hitree_materialized_entries_total"]
		require.NotNil(t, mf)
		assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())

		h := mfs["test_hitree_materialize_duration_seconds"]
		require.NotNil(t, h)
		assert.Equal(t, uint64(1), h.GetMetric()[0].GetHistogram().GetSampleCount())
	})
}

func TestCollectorClear(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "")
	require.NoError(t, err)

	tree := hitree.MustNew[bitblock.Block64, int](2, hitree.WithMetricsCollector(c))
	tree.Insert(1, 1)
	tree.Insert(100, 2)
	tree.Insert(5000, 3)
	tree.Clear()

	live := labeled(gather(t, reg)["hitree_live_nodes"], "level", "1")
	require.NotNil(t, live)
	assert.Equal(t, 0.0, live.GetGauge().GetValue())
}

func TestNewDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "")
	require.NoError(t, err)

	_, err = New(reg, "")
	require.Error(t, err)

	assert.Panics(t, func() { MustNew(reg, "") })
}
