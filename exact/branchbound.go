package exact

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// BranchBound is a depth-first branch-and-bound solver for weighted
// maximum coverage. It explores candidates in index order
// (take/skip), pruning with a submodular bound: the sum of the best
// remaining individual marginal gains. Exact but exponential in the
// worst case; intended for small instances and as a reference for
// validating heuristics.
//
// The zero value is ready to use.
type BranchBound struct {
	// CheckEvery controls how often the context deadline is polled,
	// in search nodes. Zero means every 256 nodes.
	CheckEvery int
}

var _ Solver = (*BranchBound)(nil)

// Solve implements Solver.
func (b *BranchBound) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	k := p.K
	if k > p.NumCandidates {
		k = p.NumCandidates
	}
	if k <= 0 || p.NumCandidates == 0 || p.NumPoints() == 0 {
		return &Solution{Selected: []int{}}, nil
	}

	checkEvery := b.CheckEvery
	if checkEvery <= 0 {
		checkEvery = 256
	}

	s := &bbSearch{
		sets:         candidateSets(p),
		weights:      p.Weights,
		k:            k,
		covered:      make([]bool, p.NumPoints()),
		bestSelected: []int{},
		checkEvery:   checkEvery,
	}

	if err := s.run(ctx, 0); err != nil {
		return nil, err
	}

	sort.Ints(s.bestSelected)
	return &Solution{Selected: s.bestSelected, Objective: s.bestObjective}, nil
}

// candidateSets inverts Problem.Covering back into candidate->points
// lists, the shape the search walks.
func candidateSets(p *Problem) [][]uint32 {
	sets := make([][]uint32, p.NumCandidates)
	for point, cands := range p.Covering {
		for _, c := range cands {
			sets[c] = append(sets[c], uint32(point))
		}
	}
	return sets
}

type bbSearch struct {
	sets    [][]uint32
	weights []float64
	k       int

	covered  []bool
	current  []int
	value    float64
	nodes    int
	deadline bool

	bestSelected  []int
	bestObjective float64

	checkEvery int
}

// run explores candidates from index c onward with the current
// partial selection committed.
func (s *bbSearch) run(ctx context.Context, c int) error {
	s.nodes++
	if s.nodes%s.checkEvery == 0 {
		select {
		case <-ctx.Done():
			return wrapCtxErr(ctx.Err())
		default:
		}
	}

	if s.value > s.bestObjective {
		s.bestObjective = s.value
		s.bestSelected = append(s.bestSelected[:0], s.current...)
	}
	if len(s.current) == s.k || c >= len(s.sets) {
		return nil
	}

	// Bound: current value plus the top (k - chosen) individual
	// marginal gains among remaining candidates. Submodularity makes
	// this an upper bound on any completion of this branch.
	gains := make([]float64, 0, len(s.sets)-c)
	for i := c; i < len(s.sets); i++ {
		if g := s.gain(i); g > 0 {
			gains = append(gains, g)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(gains)))

	bound := s.value
	for i := 0; i < len(gains) && i < s.k-len(s.current); i++ {
		bound += gains[i]
	}
	if bound <= s.bestObjective {
		return nil
	}

	// Take c.
	g := s.gain(c)
	if g > 0 {
		flipped := s.commit(c)
		s.current = append(s.current, c)
		s.value += g
		if err := s.run(ctx, c+1); err != nil {
			return err
		}
		s.value -= g
		s.current = s.current[:len(s.current)-1]
		s.revert(flipped)
	}

	// Skip c.
	return s.run(ctx, c+1)
}

func (s *bbSearch) gain(c int) float64 {
	var g float64
	for _, p := range s.sets[c] {
		if !s.covered[p] {
			g += s.weights[p]
		}
	}
	return g
}

// commit covers candidate c's uncovered points and returns them so
// the branch can be unwound.
func (s *bbSearch) commit(c int) []uint32 {
	var flipped []uint32
	for _, p := range s.sets[c] {
		if !s.covered[p] {
			s.covered[p] = true
			flipped = append(flipped, p)
		}
	}
	return flipped
}

func (s *bbSearch) revert(flipped []uint32) {
	for _, p := range flipped {
		s.covered[p] = false
	}
}

func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
