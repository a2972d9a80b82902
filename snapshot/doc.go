// Package snapshot serializes coverage maps to a compact binary
// format with optional LZ4 or Zstandard compression, so expensive
// coverage builds can be persisted to a blob store and restored later.
package snapshot
