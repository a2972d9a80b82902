// Package blobstore abstracts where datasets and coverage snapshots
// live: in memory, on the local file system, or in S3-compatible
// object storage (AWS S3, MinIO).
package blobstore
