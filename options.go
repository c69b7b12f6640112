package hitree

import (
	"log/slog"

	"github.com/hupe1980/hitree/internal/nodestore"
)

// Encoding selects how tree nodes store their children.
type Encoding uint8

const (
	// EncodingDense packs each node's children into an array sized to its
	// population. Memory is proportional to the actual fan-out. This is the
	// default.
	EncodingDense Encoding = iota
	// EncodingFixed gives every node a child array of the full block width,
	// allocated from a per-level slab with free-list recycling. Lookups index
	// children directly at the cost of width-proportional memory per node.
	EncodingFixed
)

// String returns the name of the encoding.
func (e Encoding) String() string { return e.kind().String() }

func (e Encoding) kind() nodestore.Kind {
	if e == EncodingFixed {
		return nodestore.KindFixed
	}
	return nodestore.KindDense
}

type options struct {
	encoding         Encoding
	initialCapacity  int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Tree.
type Option func(*options)

// WithEncoding selects the node encoding.
//
// Example:
//
//	t, _ := hitree.New[bitblock.Block64, string](3, hitree.WithEncoding(hitree.EncodingFixed))
func WithEncoding(e Encoding) Option {
	return func(o *options) {
		o.encoding = e
	}
}

// WithInitialCapacity pre-sizes the value arrays for n entries.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithMetricsCollector configures a metrics collector for tree operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hitree.BasicMetricsCollector{}
//	t, _ := hitree.New[bitblock.Block64, int](3, hitree.WithMetricsCollector(metrics))
//	// ... use t ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, nodes: %d\n", stats.InsertCount, stats.LiveNodes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		encoding:         EncodingDense,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
