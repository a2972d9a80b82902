// Package greedy implements the weighted maximum-coverage greedy
// heuristic: repeatedly pick the candidate with the largest marginal
// gain until k sites are chosen or no candidate adds anything.
//
// The coverage objective is monotone submodular, so the greedy
// selection is within (1 - 1/e) of the optimum. Two evaluators are
// provided: a naive per-iteration rescan and a lazy max-heap variant.
// Both produce the identical selection sequence; ties on gain always
// go to the smaller candidate index.
package greedy

import (
	"context"
	"fmt"

	"github.com/hupe1980/maxcover/coverage"
)

// Selection is the outcome of a greedy run.
type Selection struct {
	// Candidates holds the chosen candidate indices in selection
	// order (the order marginal gain was realized).
	Candidates []int

	// CoveredWeight is the total weight of covered demand points.
	CoveredWeight float64

	// Covered marks which demand points are covered, aligned to
	// demand input order. Bits only ever flip false -> true.
	Covered []bool
}

// Options configures the selector.
type Options struct {
	// Lazy enables the lazy-greedy evaluator. Gains only shrink as
	// coverage grows, so stale heap entries are upper bounds and can
	// be re-validated on demand instead of rescanning every
	// candidate each round. Output is identical to the naive scan.
	Lazy bool
}

// DefaultOptions are the default selector options.
var DefaultOptions = Options{
	Lazy: false,
}

// Select runs the greedy loop for up to k rounds over the coverage
// map. weights must be aligned to the demand-point universe of m.
//
// Iterations are inherently sequential; cancellation is honored
// between rounds. k <= 0 yields an empty selection without error.
func Select(ctx context.Context, m *coverage.Map, weights []float64, k int, optFns ...func(o *Options)) (*Selection, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(weights) != m.NumPoints {
		return nil, fmt.Errorf("greedy: %d weights for %d demand points", len(weights), m.NumPoints)
	}

	sel := &Selection{
		Candidates: make([]int, 0, max(k, 0)),
		Covered:    make([]bool, m.NumPoints),
	}
	if k <= 0 || m.NumCandidates() == 0 {
		return sel, nil
	}
	if k > m.NumCandidates() {
		k = m.NumCandidates()
	}

	var err error
	if opts.Lazy {
		err = selectLazy(ctx, m, weights, k, sel)
	} else {
		err = selectNaive(ctx, m, weights, k, sel)
	}
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// gain sums the weights of points in candidate c's coverage set that
// are not yet covered.
func gain(m *coverage.Map, weights []float64, covered []bool, c int) float64 {
	var g float64
	it := m.Sets[c].Iterator()
	for it.HasNext() {
		p := it.Next()
		if !covered[p] {
			g += weights[p]
		}
	}
	return g
}

// commit marks candidate c selected and flips its points covered.
func commit(m *coverage.Map, weights []float64, sel *Selection, c int, g float64) {
	sel.Candidates = append(sel.Candidates, c)
	sel.CoveredWeight += g
	it := m.Sets[c].Iterator()
	for it.HasNext() {
		sel.Covered[it.Next()] = true
	}
}

// selectNaive rescans every unselected candidate each round. This is
// the reference behavior: O(k * n_cand * avg coverage-set size).
func selectNaive(ctx context.Context, m *coverage.Map, weights []float64, k int, sel *Selection) error {
	selected := make([]bool, m.NumCandidates())

	for round := 0; round < k; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		best := -1
		bestGain := 0.0
		for c := range m.Sets {
			if selected[c] {
				continue
			}
			// Strict > keeps the first-encountered candidate on ties.
			if g := gain(m, weights, sel.Covered, c); g > bestGain {
				bestGain = g
				best = c
			}
		}

		if best < 0 {
			// No remaining candidate covers anything new.
			return nil
		}

		selected[best] = true
		commit(m, weights, sel, best, bestGain)
	}
	return nil
}
