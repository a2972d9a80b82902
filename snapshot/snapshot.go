package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/maxcover/blobstore"
	"github.com/hupe1980/maxcover/coverage"
)

var (
	// ErrBadMagic is returned when the snapshot header does not start
	// with the expected magic bytes.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for snapshot versions newer
	// than this package understands.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrUnknownCompression is returned for unrecognized compression
	// codec bytes in the header.
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
)

// Compression selects the codec applied to the snapshot body.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = iota

	// CompressionLZ4 applies LZ4 frame compression.
	CompressionLZ4

	// CompressionZSTD applies Zstandard compression.
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var magic = [4]byte{'M', 'X', 'C', 'V'}

const version = uint8(1)

// Options configures snapshot writes.
type Options struct {
	// Compression selects the body codec.
	Compression Compression
}

// Option modifies snapshot options.
type Option func(*Options)

// WithCompression sets the body codec.
func WithCompression(c Compression) Option {
	return func(o *Options) {
		o.Compression = c
	}
}

// Write serializes a coverage map. The header (magic, version, codec)
// is uncompressed; the body holds the radius, the dimensions, and one
// length-prefixed roaring frame per candidate.
func Write(w io.Writer, m *coverage.Map, optFns ...Option) error {
	opts := Options{
		Compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	header := make([]byte, 6)
	copy(header, magic[:])
	header[4] = version
	header[5] = byte(opts.Compression)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	body, closeBody, err := compressingWriter(w, opts.Compression)
	if err != nil {
		return err
	}

	if err := writeBody(body, m); err != nil {
		_ = closeBody()
		return err
	}
	return closeBody()
}

// Read deserializes a coverage map written by Write.
func Read(r io.Reader) (*coverage.Map, error) {
	header := make([]byte, 6)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, ErrBadMagic
	}
	if header[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}

	body, err := decompressingReader(r, Compression(header[5]))
	if err != nil {
		return nil, err
	}

	return readBody(body)
}

// Save writes a coverage map snapshot to a blob store.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *coverage.Map, optFns ...Option) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("snapshot: create blob: %w", err)
	}
	if err := Write(blob, m, optFns...); err != nil {
		_ = blob.Close()
		return err
	}
	return blob.Close()
}

// Load reads a coverage map snapshot from a blob store.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*coverage.Map, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open blob: %w", err)
	}
	defer blob.Close()

	return Read(blob)
}

func writeBody(w io.Writer, m *coverage.Map) error {
	bw := bufio.NewWriter(w)

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(m.Radius))
	if _, err := bw.Write(scratch[:]); err != nil {
		return fmt.Errorf("snapshot: write radius: %w", err)
	}

	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(m.Sets)))
	binary.LittleEndian.PutUint32(scratch[4:], uint32(m.NumPoints))
	if _, err := bw.Write(scratch[:]); err != nil {
		return fmt.Errorf("snapshot: write dimensions: %w", err)
	}

	for i, bm := range m.Sets {
		binary.LittleEndian.PutUint32(scratch[:4], uint32(bm.GetSerializedSizeInBytes()))
		if _, err := bw.Write(scratch[:4]); err != nil {
			return fmt.Errorf("snapshot: write frame length %d: %w", i, err)
		}
		if _, err := bm.WriteTo(bw); err != nil {
			return fmt.Errorf("snapshot: write frame %d: %w", i, err)
		}
	}

	return bw.Flush()
}

func readBody(r io.Reader) (*coverage.Map, error) {
	br := bufio.NewReader(r)

	var scratch [8]byte
	if _, err := io.ReadFull(br, scratch[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read radius: %w", err)
	}
	radius := math.Float64frombits(binary.LittleEndian.Uint64(scratch[:]))

	if _, err := io.ReadFull(br, scratch[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read dimensions: %w", err)
	}
	numCandidates := binary.LittleEndian.Uint32(scratch[:4])
	numPoints := binary.LittleEndian.Uint32(scratch[4:])

	sets := make([]*roaring.Bitmap, numCandidates)
	for i := range sets {
		if _, err := io.ReadFull(br, scratch[:4]); err != nil {
			return nil, fmt.Errorf("snapshot: read frame length %d: %w", i, err)
		}
		frameLen := binary.LittleEndian.Uint32(scratch[:4])

		frame := make([]byte, frameLen)
		if _, err := io.ReadFull(br, frame); err != nil {
			return nil, fmt.Errorf("snapshot: read frame %d: %w", i, err)
		}

		bm := roaring.New()
		if err := bm.UnmarshalBinary(frame); err != nil {
			return nil, fmt.Errorf("snapshot: decode frame %d: %w", i, err)
		}
		sets[i] = bm
	}

	return &coverage.Map{
		Sets:      sets,
		NumPoints: int(numPoints),
		Radius:    radius,
	}, nil
}

func compressingWriter(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		return lw, lw.Close, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot: zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

func decompressingReader(r io.Reader, c Compression) (io.Reader, error) {
	switch c {
	case CompressionNone:
		return r, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
