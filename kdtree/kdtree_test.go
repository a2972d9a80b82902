package kdtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteInRadius is the reference: linear scan over all points.
func bruteInRadius(xs, ys []float64, x, y, r float64) []uint32 {
	var out []uint32
	for i := range xs {
		dx := xs[i] - x
		dy := ys[i] - y
		if dx*dx+dy*dy <= r*r {
			out = append(out, uint32(i))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestInRadiusSmall(t *testing.T) {
	xs := []float64{0, 1, 10, -3, 0}
	ys := []float64{0, 0, 0, 4, 2}
	tree := Build(xs, ys)
	require.Equal(t, 5, tree.Len())

	tests := []struct {
		name     string
		x, y, r  float64
		expected []uint32
	}{
		{"Origin", 0, 0, 2, []uint32{0, 1, 4}},
		{"Far", 10, 0, 0.5, []uint32{2}},
		{"All", 0, 0, 100, []uint32{0, 1, 2, 3, 4}},
		{"None", 50, 50, 1, nil},
		{"ExactBoundary", 0, 0, 1, []uint32{0, 1}}, // point 1 at distance exactly 1
		{"ZeroRadius", 1, 0, 0, []uint32{1}},
		{"NegativeRadius", 0, 0, -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.InRadius(tt.x, tt.y, tt.r, nil)
			if tt.expected == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestInRadiusMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	const n = 500
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64() * 100
		ys[i] = rng.Float64() * 100
	}

	tree := Build(xs, ys)

	var buf []uint32
	for q := 0; q < 200; q++ {
		x := rng.Float64() * 100
		y := rng.Float64() * 100
		r := rng.Float64() * 20

		buf = tree.InRadius(x, y, r, buf)
		want := bruteInRadius(xs, ys, x, y, r)

		if want == nil {
			require.Empty(t, buf, "query (%v, %v, r=%v)", x, y, r)
		} else {
			require.Equal(t, want, buf, "query (%v, %v, r=%v)", x, y, r)
		}
	}
}

func TestInRadiusDuplicateCoordinates(t *testing.T) {
	// Several points sharing coordinates must all be found.
	xs := []float64{5, 5, 5, 5, 6}
	ys := []float64{5, 5, 5, 5, 5}
	tree := Build(xs, ys)

	got := tree.InRadius(5, 5, 0, nil)
	assert.Equal(t, []uint32{0, 1, 2, 3}, got)

	got = tree.InRadius(5, 5, 1, got)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, got)
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil, nil)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.InRadius(0, 0, 10, nil))
}

func TestBuildSinglePoint(t *testing.T) {
	tree := Build([]float64{3}, []float64{4})
	assert.Equal(t, []uint32{0}, tree.InRadius(0, 0, 5, nil)) // distance exactly 5
	assert.Empty(t, tree.InRadius(0, 0, 4.999, nil))
}

func TestInRadiusReusesBuffer(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 0, 0}
	tree := Build(xs, ys)

	buf := make([]uint32, 0, 8)
	got := tree.InRadius(0, 0, 10, buf)
	assert.Equal(t, []uint32{0, 1, 2}, got)

	// Second query overwrites, does not append to, the previous result.
	got = tree.InRadius(2, 0, 0.5, got)
	assert.Equal(t, []uint32{2}, got)
}
