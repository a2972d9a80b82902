// Package s3 implements blobstore.BlobStore on Amazon S3 using the
// AWS SDK v2, with streaming uploads through the transfer manager.
package s3
