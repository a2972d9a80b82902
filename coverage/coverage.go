// Package coverage computes, for every candidate site, the set of
// demand points within the coverage radius.
//
// Coverage sets are Roaring bitmaps: cheap to union into a covered
// mask during selection and compact to serialize for snapshots. The
// map is fully materialized before selection begins and is read-only
// afterwards.
package coverage

import (
	"context"
	"fmt"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/maxcover/geom"
	"github.com/hupe1980/maxcover/kdtree"
)

// Map holds one coverage set per candidate, indexed by candidate
// position in the geometry store. Candidates that cover nothing keep
// an empty bitmap so candidate indices stay stable.
type Map struct {
	// Sets[c] is the set of demand-point indices within the radius of
	// candidate c.
	Sets []*roaring.Bitmap

	// NumPoints is the size of the demand-point universe.
	NumPoints int

	// Radius is the coverage radius the map was built with.
	Radius float64
}

// Options configures the coverage build.
type Options struct {
	// Parallelism bounds the number of concurrent range queries.
	// Zero or negative means GOMAXPROCS.
	Parallelism int
}

// DefaultOptions are the default coverage build options.
var DefaultOptions = Options{
	Parallelism: 0,
}

// Build issues one radius query per candidate against the spatial
// index and collects the results. Queries are independent and read
// only shared state, so they run in parallel across candidates.
//
// The context is checked per work chunk; cancellation aborts the
// build with the context's error.
func Build(ctx context.Context, tree *kdtree.Tree, g *geom.Store, radius float64, optFns ...func(o *Options)) (*Map, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	nCand := g.NumCandidates()
	m := &Map{
		Sets:      make([]*roaring.Bitmap, nCand),
		NumPoints: g.NumPoints(),
		Radius:    radius,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	// Chunked fan-out: one goroutine per chunk, one scratch buffer per
	// goroutine. InRadius returns sorted indices, which is what
	// AddMany wants.
	const chunkSize = 64
	for start := 0; start < nCand; start += chunkSize {
		start := start
		end := min(start+chunkSize, nCand)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf []uint32
			for c := start; c < end; c++ {
				buf = tree.InRadius(g.CandidateX[c], g.CandidateY[c], radius, buf)
				bm := roaring.New()
				bm.AddMany(buf)
				m.Sets[c] = bm
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("coverage: build: %w", err)
	}
	return m, nil
}

// NumCandidates returns the number of candidates in the map.
func (m *Map) NumCandidates() int { return len(m.Sets) }

// Transpose returns, for every demand point, the candidate indices
// whose coverage set contains it. This is the shape the exact-solver
// contract consumes.
func (m *Map) Transpose() [][]uint32 {
	covering := make([][]uint32, m.NumPoints)
	for c, set := range m.Sets {
		it := set.Iterator()
		for it.HasNext() {
			p := it.Next()
			covering[p] = append(covering[p], uint32(c))
		}
	}
	return covering
}

// CoveredWeight returns the total weight of points covered by at
// least one candidate in the map. Useful as an upper bound on any
// selection's objective.
func (m *Map) CoveredWeight(weights []float64) float64 {
	union := roaring.New()
	for _, set := range m.Sets {
		union.Or(set)
	}
	var sum float64
	it := union.Iterator()
	for it.HasNext() {
		sum += weights[it.Next()]
	}
	return sum
}
