package maxcover

import (
	"log/slog"

	"github.com/hupe1980/maxcover/exact"
	"github.com/hupe1980/maxcover/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	exactSolver      exact.Solver
	controller       *resource.Controller
	parallelism      int
	lazyGreedy       bool
}

// Option configures Engine constructor behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &maxcover.BasicMetricsCollector{}
//	eng := maxcover.New(maxcover.WithMetricsCollector(metrics))
//	// ... solve ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithExactSolver configures an exact solver backend. When a solve
// request sets PreferExact, the engine attempts this solver first and
// falls back to greedy on any failure.
func WithExactSolver(s exact.Solver) Option {
	return func(o *options) {
		o.exactSolver = s
	}
}

// WithResourceController configures admission control for solves.
// Useful when one process serves many concurrent solve requests.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithParallelism bounds the number of goroutines used for the
// coverage build. Zero or negative means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLazyGreedy enables the lazy-greedy evaluator. The selection is
// identical to the naive scan; only the evaluation strategy changes.
// Recommended for large candidate counts.
func WithLazyGreedy(lazy bool) Option {
	return func(o *options) {
		o.lazyGreedy = lazy
	}
}

func applyOptions(optFns []Option) options {
	o := options{
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
