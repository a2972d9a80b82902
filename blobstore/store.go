package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing immutable data
// blobs (datasets and coverage snapshots). Blobs are streamed
// sequentially; a written blob becomes visible once its writer is
// closed successfully.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for writing. The blob is committed on
	// Close; a Close error means the blob must not be assumed to
	// exist.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReadCloser

	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a write handle to a blob under construction.
type WritableBlob interface {
	io.WriteCloser
}
