// Package exact defines the contract for exact maximum-coverage
// solvers and ships a pure-Go branch-and-bound reference
// implementation.
//
// The core engine treats exact solving as a pluggable strategy: a
// Solver is a pure function from a Problem to a Solution or a typed
// failure. Integer-programming backends can implement the same
// interface; the caller's policy on failure is to fall back to the
// greedy selector.
package exact

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates no exact solver backend is usable in
	// this environment.
	ErrUnavailable = errors.New("exact solver unavailable")

	// ErrTimeout indicates the solver exhausted its time budget
	// before proving optimality.
	ErrTimeout = errors.New("exact solver timed out")

	// ErrInfeasible indicates the solver determined the problem has
	// no solution within its constraints.
	ErrInfeasible = errors.New("exact solver found problem infeasible")
)

// Problem is the solver input: the point->candidates transpose of the
// coverage map, demand weights, and the selection budget. Solvers
// must treat every field as read-only.
type Problem struct {
	// NumCandidates is the size of the candidate universe.
	NumCandidates int

	// Covering[p] lists the candidate indices covering demand point
	// p, sorted ascending. Points nobody covers have an empty list.
	Covering [][]uint32

	// Weights[p] is the weight of demand point p.
	Weights []float64

	// K is the maximum number of candidates to select.
	K int
}

// NumPoints returns the size of the demand-point universe.
func (p *Problem) NumPoints() int { return len(p.Covering) }

// Solution is a solver output. Selected holds at most min(K,
// NumCandidates) candidate indices, sorted ascending; Objective is
// the total covered weight they achieve.
type Solution struct {
	Selected  []int
	Objective float64
}

// Solver finds a provably optimal selection for a Problem.
//
// Implementations must be pure: no mutation of the Problem, no shared
// state between calls. They must honor ctx cancellation and deadline,
// returning an error satisfying errors.Is(err, ErrTimeout) when the
// budget expires before optimality is proven.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}
