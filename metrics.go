package maxcover

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCoverageBuild is called after each coverage map build.
	// candidates and points are the problem dimensions, duration is the
	// total time taken, err is nil if successful.
	RecordCoverageBuild(candidates, points int, duration time.Duration, err error)

	// RecordSolve is called after each solve.
	// method is "greedy" or "exact", duration is the time taken,
	// err is nil if successful.
	RecordSolve(method string, k int, duration time.Duration, err error)

	// RecordExactFallback is called whenever an exact solve attempt
	// fails and the engine falls back to greedy.
	RecordExactFallback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCoverageBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSolve(string, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordExactFallback()                               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CoverageBuildCount      atomic.Int64
	CoverageBuildErrors     atomic.Int64
	CoverageBuildTotalNanos atomic.Int64
	SolveCount              atomic.Int64
	SolveErrors             atomic.Int64
	SolveTotalNanos         atomic.Int64
	GreedySolves            atomic.Int64
	ExactSolves             atomic.Int64
	ExactFallbacks          atomic.Int64
}

// RecordCoverageBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCoverageBuild(candidates, points int, duration time.Duration, err error) {
	b.CoverageBuildCount.Add(1)
	b.CoverageBuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CoverageBuildErrors.Add(1)
	}
}

// RecordSolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSolve(method string, k int, duration time.Duration, err error) {
	b.SolveCount.Add(1)
	b.SolveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SolveErrors.Add(1)
		return
	}
	switch method {
	case MethodGreedy:
		b.GreedySolves.Add(1)
	case MethodExact:
		b.ExactSolves.Add(1)
	}
}

// RecordExactFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExactFallback() {
	b.ExactFallbacks.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CoverageBuildCount:    b.CoverageBuildCount.Load(),
		CoverageBuildErrors:   b.CoverageBuildErrors.Load(),
		CoverageBuildAvgNanos: b.avgNanos(&b.CoverageBuildTotalNanos, &b.CoverageBuildCount),
		SolveCount:            b.SolveCount.Load(),
		SolveErrors:           b.SolveErrors.Load(),
		SolveAvgNanos:         b.avgNanos(&b.SolveTotalNanos, &b.SolveCount),
		GreedySolves:          b.GreedySolves.Load(),
		ExactSolves:           b.ExactSolves.Load(),
		ExactFallbacks:        b.ExactFallbacks.Load(),
	}
}

func (b *BasicMetricsCollector) avgNanos(total, count *atomic.Int64) int64 {
	n := count.Load()
	if n == 0 {
		return 0
	}
	return total.Load() / n
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CoverageBuildCount    int64
	CoverageBuildErrors   int64
	CoverageBuildAvgNanos int64
	SolveCount            int64
	SolveErrors           int64
	SolveAvgNanos         int64
	GreedySolves          int64
	ExactSolves           int64
	ExactFallbacks        int64
}
