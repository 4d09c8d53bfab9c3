// Package blobstore provides the storage abstraction for datasets and result
// documents.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, blobs are read through mmap
//   - MemoryStore: in-process map, for tests and the mem:// scheme
//   - CachingStore: keeps whole blobs of a slower store in an LRU
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO or any S3-compatible endpoint
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
