package greedy

import (
	"context"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/maxcover/coverage"
)

// mapFromSets builds a coverage map directly from candidate point
// lists, bypassing the spatial pipeline.
func mapFromSets(numPoints int, sets ...[]uint32) *coverage.Map {
	m := &coverage.Map{
		Sets:      make([]*roaring.Bitmap, len(sets)),
		NumPoints: numPoints,
	}
	for c, points := range sets {
		bm := roaring.New()
		bm.AddMany(points)
		m.Sets[c] = bm
	}
	return m
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestSelectBasic(t *testing.T) {
	// Candidate 0 covers points {0,1} (weight 8), candidate 1 covers
	// {2} (weight 10).
	m := mapFromSets(3, []uint32{0, 1}, []uint32{2})
	weights := []float64{5, 3, 10}

	t.Run("KOne", func(t *testing.T) {
		sel, err := Select(context.Background(), m, weights, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, sel.Candidates)
		assert.InDelta(t, 10.0, sel.CoveredWeight, 1e-9)
		assert.Equal(t, []bool{false, false, true}, sel.Covered)
	})

	t.Run("KTwo", func(t *testing.T) {
		sel, err := Select(context.Background(), m, weights, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0}, sel.Candidates)
		assert.InDelta(t, 18.0, sel.CoveredWeight, 1e-9)
		assert.Equal(t, []bool{true, true, true}, sel.Covered)
	})
}

func TestSelectTieBreak(t *testing.T) {
	// Both candidates cover weight 5; the smaller index must win.
	m := mapFromSets(2, []uint32{0}, []uint32{1})
	weights := []float64{5, 5}

	for _, lazy := range []bool{false, true} {
		sel, err := Select(context.Background(), m, weights, 1, func(o *Options) { o.Lazy = lazy })
		require.NoError(t, err)
		assert.Equal(t, []int{0}, sel.Candidates, "lazy=%v", lazy)
	}
}

func TestSelectEarlyStop(t *testing.T) {
	// Candidate 1 duplicates candidate 0; after picking 0 there is no
	// positive gain left and the loop must stop before k.
	m := mapFromSets(2, []uint32{0, 1}, []uint32{0, 1}, nil)

	sel, err := Select(context.Background(), m, ones(2), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, sel.Candidates)
	assert.InDelta(t, 2.0, sel.CoveredWeight, 1e-9)
}

func TestSelectZeroWeightPoints(t *testing.T) {
	// A candidate covering only zero-weight points has zero gain and
	// is never selected.
	m := mapFromSets(2, []uint32{0}, []uint32{1})
	weights := []float64{0, 1}

	sel, err := Select(context.Background(), m, weights, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, sel.Candidates)
}

func TestSelectBoundaries(t *testing.T) {
	m := mapFromSets(2, []uint32{0}, []uint32{1})

	t.Run("KZero", func(t *testing.T) {
		sel, err := Select(context.Background(), m, ones(2), 0)
		require.NoError(t, err)
		assert.Empty(t, sel.Candidates)
		assert.Zero(t, sel.CoveredWeight)
		assert.Equal(t, []bool{false, false}, sel.Covered)
	})

	t.Run("KClamped", func(t *testing.T) {
		sel, err := Select(context.Background(), m, ones(2), 100)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, sel.Candidates)
	})

	t.Run("WeightsMismatch", func(t *testing.T) {
		_, err := Select(context.Background(), m, ones(5), 1)
		require.Error(t, err)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Select(ctx, m, ones(2), 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSelectMonotonicInK(t *testing.T) {
	m, weights := randomInstance(rand.New(rand.NewSource(11)), 40, 120)

	prev := 0.0
	for k := 0; k <= 40; k++ {
		sel, err := Select(context.Background(), m, weights, k)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sel.CoveredWeight+1e-9, prev, "k=%d", k)
		prev = sel.CoveredWeight
	}
}

func TestSelectDeterministic(t *testing.T) {
	m, weights := randomInstance(rand.New(rand.NewSource(3)), 60, 200)

	first, err := Select(context.Background(), m, weights, 10)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Select(context.Background(), m, weights, 10)
		require.NoError(t, err)
		assert.Equal(t, first.Candidates, again.Candidates)
		assert.Equal(t, first.Covered, again.Covered)
	}
}

func TestLazyMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 30; trial++ {
		nCand := 5 + rng.Intn(60)
		nPoints := 10 + rng.Intn(200)
		m, weights := randomInstance(rng, nCand, nPoints)
		k := 1 + rng.Intn(nCand)

		naive, err := Select(context.Background(), m, weights, k)
		require.NoError(t, err)

		lazy, err := Select(context.Background(), m, weights, k, func(o *Options) { o.Lazy = true })
		require.NoError(t, err)

		require.Equal(t, naive.Candidates, lazy.Candidates, "trial %d", trial)
		require.InDelta(t, naive.CoveredWeight, lazy.CoveredWeight, 1e-9, "trial %d", trial)
		require.Equal(t, naive.Covered, lazy.Covered, "trial %d", trial)
	}
}

// randomInstance builds a random coverage map with small integer
// weights so gain ties actually occur and exercise the tie-break.
func randomInstance(rng *rand.Rand, nCand, nPoints int) (*coverage.Map, []float64) {
	sets := make([][]uint32, nCand)
	for c := range sets {
		size := rng.Intn(nPoints / 2)
		seen := make(map[uint32]bool, size)
		for len(seen) < size {
			seen[uint32(rng.Intn(nPoints))] = true
		}
		for p := range seen {
			sets[c] = append(sets[c], p)
		}
	}

	weights := make([]float64, nPoints)
	for i := range weights {
		weights[i] = float64(rng.Intn(4)) // zeros included on purpose
	}
	return mapFromSets(nPoints, sets...), weights
}
