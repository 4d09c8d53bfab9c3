// Package minio provides a MinIO implementation of the blobstore.BlobStore
// interface. It works with any S3-compatible endpoint.
//
// # Usage
//
//	store, err := minio.New("localhost:9000", "datasets",
//	    minio.WithCredentials(accessKey, secretKey),
//	    minio.WithPrefix("kcluster/"),
//	)
package minio
