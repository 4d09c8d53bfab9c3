// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	data, err := blobstore.Get(ctx, store, "blobs.kcm")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large blobs
//   - CRC32C checksums on single-part uploads
//   - Automatic pagination for listing
package s3
