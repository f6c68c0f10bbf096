// Package blobstore stores whole, immutable blobs such as store snapshots.
//
// BlobStore is deliberately small: snapshots are written and read in one
// piece, so there is no need for ranged reads or streaming writers.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local filesystem (atomic rename on Put)
//   - MemoryStore: process memory, for tests
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 through aws-sdk-go-v2
package blobstore
