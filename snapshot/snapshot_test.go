package snapshot

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/maxcover/blobstore"
	"github.com/hupe1980/maxcover/coverage"
)

func testMap(t *testing.T) *coverage.Map {
	t.Helper()

	rng := rand.New(rand.NewSource(5))
	const nCand, nPoints = 50, 1000

	sets := make([]*roaring.Bitmap, nCand)
	for c := range sets {
		bm := roaring.New()
		for p := 0; p < nPoints; p++ {
			if rng.Float64() < 0.1 {
				bm.Add(uint32(p))
			}
		}
		sets[c] = bm
	}
	// One empty set; empties must survive the round trip.
	sets[7] = roaring.New()

	return &coverage.Map{Sets: sets, NumPoints: nPoints, Radius: 123.5}
}

func requireEqualMaps(t *testing.T, want, got *coverage.Map) {
	t.Helper()
	require.Equal(t, want.NumPoints, got.NumPoints)
	require.Equal(t, want.Radius, got.Radius)
	require.Equal(t, want.NumCandidates(), got.NumCandidates())
	for c := range want.Sets {
		require.True(t, want.Sets[c].Equals(got.Sets[c]), "candidate %d", c)
	}
}

func TestRoundTrip(t *testing.T) {
	m := testMap(t)

	tests := []struct {
		name        string
		compression Compression
	}{
		{"None", CompressionNone},
		{"LZ4", CompressionLZ4},
		{"ZSTD", CompressionZSTD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, m, WithCompression(tt.compression)))

			got, err := Read(&buf)
			require.NoError(t, err)
			requireEqualMaps(t, m, got)
		})
	}
}

func TestCompressionShrinks(t *testing.T) {
	// Identical coverage sets across candidates, the pathological case
	// a dense grid of candidates produces. Codecs must exploit the
	// cross-frame repetition.
	base := roaring.New()
	for p := uint32(0); p < 2000; p += 3 {
		base.Add(p)
	}
	sets := make([]*roaring.Bitmap, 50)
	for c := range sets {
		sets[c] = base.Clone()
	}
	m := &coverage.Map{Sets: sets, NumPoints: 2000, Radius: 10}

	var raw, compressed bytes.Buffer
	require.NoError(t, Write(&raw, m, WithCompression(CompressionNone)))
	require.NoError(t, Write(&compressed, m, WithCompression(CompressionZSTD)))

	assert.Less(t, compressed.Len(), raw.Len())
}

func TestReadErrors(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		_, err := Read(bytes.NewReader([]byte("NOPE\x01\x00trailing")))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		_, err := Read(bytes.NewReader([]byte{'M', 'X', 'C', 'V', 99, 0}))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		_, err := Read(bytes.NewReader([]byte{'M', 'X', 'C', 'V', 1, 77}))
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("Truncated", func(t *testing.T) {
		m := testMap(t)
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, m, WithCompression(CompressionNone)))

		_, err := Read(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
		require.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Read(bytes.NewReader(nil))
		require.Error(t, err)
	})
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := testMap(t)

	require.NoError(t, Save(ctx, store, "snapshots/map.bin", m))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/map.bin"}, names)

	got, err := Load(ctx, store, "snapshots/map.bin")
	require.NoError(t, err)
	requireEqualMaps(t, m, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore(), "nope.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
