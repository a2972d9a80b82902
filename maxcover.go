// Package maxcover solves the weighted maximum-coverage site
// selection problem: given candidate sites, weighted demand points,
// a coverage radius and a budget of k sites, pick the candidates that
// maximize the total weight of covered demand.
//
// The pipeline per solve request:
//
//	tables -> geom.Store -> kdtree.Tree -> coverage.Map -> selection
//
// Selection runs the greedy heuristic by default, which carries a
// (1 - 1/e) approximation guarantee. An exact solver can be plugged
// in via WithExactSolver and requested per solve with PreferExact;
// any exact failure (unavailable, timeout, infeasible) falls back to
// greedy, and the Result's Method field reports which path produced
// the answer.
//
// # Quick Start
//
//	candidates, _ := geom.ReadCSV(candFile)
//	demand, _ := geom.ReadCSV(demandFile)
//
//	eng := maxcover.New(
//	    maxcover.WithLogLevel(slog.LevelInfo),
//	    maxcover.WithLazyGreedy(true),
//	)
//
//	res, err := eng.Solve(ctx, candidates, demand, maxcover.SolveRequest{
//	    K:      5,
//	    Radius: 2000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Method, res.SelectedIDs, res.TotalCoveredWeight)
//
// Expensive coverage maps can be persisted with the snapshot package
// and a blob store (local disk, S3, MinIO), then re-solved with
// different budgets via SolveCoverage without rebuilding.
package maxcover

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/maxcover/coverage"
	"github.com/hupe1980/maxcover/exact"
	"github.com/hupe1980/maxcover/geom"
	"github.com/hupe1980/maxcover/greedy"
	"github.com/hupe1980/maxcover/kdtree"
)

// Method values reported in Result.Method.
const (
	MethodGreedy = "greedy"
	MethodExact  = "exact"
)

// SolveRequest holds the parameters of one solve.
type SolveRequest struct {
	// K is the maximum number of sites to select. Zero yields an
	// empty selection; negative is a validation error. K larger than
	// the candidate count is clamped.
	K int

	// Radius is the coverage radius, in coordinate units. Must be
	// positive.
	Radius float64

	// PreferExact attempts the configured exact solver before greedy.
	// Ignored when no exact solver is configured.
	PreferExact bool

	// TimeLimit bounds the exact solve. Zero means no limit beyond
	// the caller's context. Ignored for greedy.
	TimeLimit time.Duration
}

// Result is the outcome of a solve.
type Result struct {
	// Method is "greedy" or "exact", so callers can distinguish an
	// approximate answer from a provably optimal one.
	Method string

	// SelectedIDs holds the chosen candidate ids in selection order.
	// For the exact method the order is ascending candidate index,
	// since exact solvers return a set, not a sequence.
	SelectedIDs []int64

	// TotalCoveredWeight is the summed weight of covered demand points.
	TotalCoveredWeight float64

	// CoveredMask marks covered demand points, aligned to demand
	// input order.
	CoveredMask []bool
}

// Engine solves max-k-coverage site selection requests. An Engine is
// immutable after New and safe for concurrent use.
type Engine struct {
	opts options
}

// New creates a new Engine.
func New(optFns ...Option) *Engine {
	return &Engine{
		opts: applyOptions(optFns),
	}
}

// Solve validates the tables, builds the spatial index and coverage
// map, and runs selection. It is the whole pipeline in one call; use
// BuildCoverage and SolveCoverage to reuse a coverage map across
// budgets.
func (e *Engine) Solve(ctx context.Context, candidates, demand *geom.Table, req SolveRequest) (*Result, error) {
	g, err := geom.NewStore(candidates, demand)
	if err != nil {
		return nil, err
	}

	m, err := e.BuildCoverage(ctx, g, req.Radius)
	if err != nil {
		return nil, err
	}

	return e.SolveCoverage(ctx, g, m, req)
}

// BuildCoverage builds the k-d tree over the demand points and the
// per-candidate coverage map for the given radius.
func (e *Engine) BuildCoverage(ctx context.Context, g *geom.Store, radius float64) (*coverage.Map, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}

	start := time.Now()
	tree := kdtree.Build(g.PointX, g.PointY)

	m, err := coverage.Build(ctx, tree, g, radius, func(o *coverage.Options) {
		o.Parallelism = e.opts.parallelism
	})
	e.opts.metricsCollector.RecordCoverageBuild(g.NumCandidates(), g.NumPoints(), time.Since(start), err)
	e.opts.logger.LogCoverageBuild(ctx, g.NumCandidates(), g.NumPoints(), radius, err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SolveCoverage runs selection over a prebuilt coverage map. The map
// must have been built from the same geometry store.
func (e *Engine) SolveCoverage(ctx context.Context, g *geom.Store, m *coverage.Map, req SolveRequest) (*Result, error) {
	if req.K < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, req.K)
	}

	if err := e.opts.controller.AcquireSolve(ctx); err != nil {
		return nil, fmt.Errorf("maxcover: acquire solve slot: %w", err)
	}
	defer e.opts.controller.ReleaseSolve()

	k := req.K
	if k > m.NumCandidates() {
		k = m.NumCandidates()
	}

	start := time.Now()

	if req.PreferExact && e.opts.exactSolver != nil && k > 0 {
		res, err := e.solveExact(ctx, g, m, k, req.TimeLimit)
		if err == nil {
			e.opts.metricsCollector.RecordSolve(MethodExact, k, time.Since(start), nil)
			e.opts.logger.LogSolve(ctx, k, MethodExact, res.TotalCoveredWeight, nil)
			return res, nil
		}
		if ctx.Err() != nil {
			// The caller's context expired, not just the exact budget.
			return nil, ctx.Err()
		}
		e.opts.metricsCollector.RecordExactFallback()
		e.opts.logger.LogExactFallback(ctx, err)
	}

	sel, err := greedy.Select(ctx, m, g.Weights, k, func(o *greedy.Options) {
		o.Lazy = e.opts.lazyGreedy
	})
	e.opts.metricsCollector.RecordSolve(MethodGreedy, k, time.Since(start), err)
	if err != nil {
		e.opts.logger.LogSolve(ctx, k, MethodGreedy, 0, err)
		return nil, err
	}

	res := &Result{
		Method:             MethodGreedy,
		SelectedIDs:        candidateIDs(g, sel.Candidates),
		TotalCoveredWeight: sel.CoveredWeight,
		CoveredMask:        sel.Covered,
	}
	e.opts.logger.LogSolve(ctx, k, MethodGreedy, res.TotalCoveredWeight, nil)
	return res, nil
}

// SolveExact runs only the exact path, with no greedy fallback.
// Returns ErrNoExactSolver if no backend is configured.
func (e *Engine) SolveExact(ctx context.Context, g *geom.Store, m *coverage.Map, req SolveRequest) (*Result, error) {
	if req.K < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, req.K)
	}
	if e.opts.exactSolver == nil {
		return nil, ErrNoExactSolver
	}

	if err := e.opts.controller.AcquireSolve(ctx); err != nil {
		return nil, fmt.Errorf("maxcover: acquire solve slot: %w", err)
	}
	defer e.opts.controller.ReleaseSolve()

	k := req.K
	if k > m.NumCandidates() {
		k = m.NumCandidates()
	}

	start := time.Now()
	res, err := e.solveExact(ctx, g, m, k, req.TimeLimit)
	e.opts.metricsCollector.RecordSolve(MethodExact, k, time.Since(start), err)
	e.opts.logger.LogSolve(ctx, k, MethodExact, resultWeight(res), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) solveExact(ctx context.Context, g *geom.Store, m *coverage.Map, k int, timeLimit time.Duration) (*Result, error) {
	if timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeLimit)
		defer cancel()
	}

	problem := &exact.Problem{
		NumCandidates: m.NumCandidates(),
		Covering:      m.Transpose(),
		Weights:       g.Weights,
		K:             k,
	}

	sol, err := e.opts.exactSolver.Solve(ctx, problem)
	if err != nil {
		return nil, err
	}

	covered := make([]bool, m.NumPoints)
	for _, c := range sol.Selected {
		it := m.Sets[c].Iterator()
		for it.HasNext() {
			covered[it.Next()] = true
		}
	}

	return &Result{
		Method:             MethodExact,
		SelectedIDs:        candidateIDs(g, sol.Selected),
		TotalCoveredWeight: sol.Objective,
		CoveredMask:        covered,
	}, nil
}

func candidateIDs(g *geom.Store, indices []int) []int64 {
	ids := make([]int64, len(indices))
	for i, c := range indices {
		ids[i] = g.CandidateIDs[c]
	}
	return ids
}

func resultWeight(r *Result) float64 {
	if r == nil {
		return 0
	}
	return r.TotalCoveredWeight
}
