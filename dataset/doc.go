// Package dataset loads labeled feature matrices for clustering experiments.
//
// Datasets are stored as KCM1 blobs: a fixed header followed by the row-major
// float64 features and optional int32 labels, split into independently
// compressed blocks (none, LZ4 or zstd). A Cache owns the decoded datasets of
// one BlobStore and must be closed by its owner; there is no process-wide
// state.
//
//	c := dataset.NewCache(blobstore.NewLocalStore("./data"))
//	defer c.Close()
//
//	ds, err := c.Select(ctx, "tdt2.kcm", dataset.Selection{
//	    Sample:    5,
//	    DropZeros: true,
//	})
package dataset
