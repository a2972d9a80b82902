package coverage

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/maxcover/geom"
	"github.com/hupe1980/maxcover/kdtree"
)

func testStore(t *testing.T) *geom.Store {
	t.Helper()

	candidates := &geom.Table{
		Header: []string{"id", "x", "y"},
		Rows: [][]string{
			{"0", "0", "0"},
			{"1", "10", "0"},
			{"2", "100", "100"},
		},
	}
	demand := &geom.Table{
		Header: []string{"id", "x", "y", "weight"},
		Rows: [][]string{
			{"0", "0", "0", "5"},
			{"1", "1", "0", "3"},
			{"2", "10", "0", "10"},
		},
	}

	s, err := geom.NewStore(candidates, demand)
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	g := testStore(t)
	tree := kdtree.Build(g.PointX, g.PointY)

	m, err := Build(context.Background(), tree, g, 2)
	require.NoError(t, err)

	require.Equal(t, 3, m.NumCandidates())
	assert.Equal(t, 3, m.NumPoints)
	assert.Equal(t, 2.0, m.Radius)

	assert.Equal(t, []uint32{0, 1}, m.Sets[0].ToArray())
	assert.Equal(t, []uint32{2}, m.Sets[1].ToArray())

	// Candidates covering nothing keep an empty set so indices stay
	// stable.
	require.NotNil(t, m.Sets[2])
	assert.True(t, m.Sets[2].IsEmpty())
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	candRows := make([][]string, 300)
	for i := range candRows {
		candRows[i] = []string{
			strconv.Itoa(i),
			strconv.FormatFloat(rng.Float64()*50, 'f', -1, 64),
			strconv.FormatFloat(rng.Float64()*50, 'f', -1, 64),
		}
	}
	demandRows := make([][]string, 400)
	for i := range demandRows {
		demandRows[i] = []string{
			strconv.Itoa(i),
			strconv.FormatFloat(rng.Float64()*50, 'f', -1, 64),
			strconv.FormatFloat(rng.Float64()*50, 'f', -1, 64),
		}
	}

	g, err := geom.NewStore(
		&geom.Table{Header: []string{"id", "x", "y"}, Rows: candRows},
		&geom.Table{Header: []string{"id", "x", "y"}, Rows: demandRows},
	)
	require.NoError(t, err)

	tree := kdtree.Build(g.PointX, g.PointY)

	serial, err := Build(context.Background(), tree, g, 5, func(o *Options) { o.Parallelism = 1 })
	require.NoError(t, err)

	parallel, err := Build(context.Background(), tree, g, 5, func(o *Options) { o.Parallelism = 8 })
	require.NoError(t, err)

	require.Equal(t, serial.NumCandidates(), parallel.NumCandidates())
	for c := range serial.Sets {
		assert.True(t, serial.Sets[c].Equals(parallel.Sets[c]), "candidate %d", c)
	}
}

func TestBuildCanceled(t *testing.T) {
	g := testStore(t)
	tree := kdtree.Build(g.PointX, g.PointY)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, tree, g, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranspose(t *testing.T) {
	g := testStore(t)
	tree := kdtree.Build(g.PointX, g.PointY)

	m, err := Build(context.Background(), tree, g, 2)
	require.NoError(t, err)

	covering := m.Transpose()
	require.Len(t, covering, 3)
	assert.Equal(t, []uint32{0}, covering[0])
	assert.Equal(t, []uint32{0}, covering[1])
	assert.Equal(t, []uint32{1}, covering[2])
}

func TestCoveredWeight(t *testing.T) {
	g := testStore(t)
	tree := kdtree.Build(g.PointX, g.PointY)

	m, err := Build(context.Background(), tree, g, 2)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, m.CoveredWeight(g.Weights), 1e-9)

	// Tiny radius: only the demand points candidates sit directly on.
	tiny, err := Build(context.Background(), tree, g, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, tiny.CoveredWeight(g.Weights), 1e-9) // points 0 and 2 coincide with candidates
}
