package blobstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/kcluster/internal/cache"
	"github.com/hupe1980/kcluster/resource"
)

// CachingStore wraps a BlobStore and keeps recently read blobs in memory.
// Blobs are immutable, so a cached copy is valid until the blob is replaced
// or deleted through this store.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU[[]byte]
	group singleflight.Group
}

// NewCachingStore creates a new CachingStore holding at most capacity bytes.
// If rc is provided, cached bytes count against its memory limit.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.New(capacity, func(b []byte) int64 { return int64(len(b)) }, rc),
	}
}

// Open returns the cached blob or reads it once from the inner store.
// Concurrent opens of the same missing blob share one read.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		data, err := Get(ctx, s.inner, name)
		if err != nil {
			return nil, err
		}
		s.cache.Set(name, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: v.([]byte)}, nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached copy and deletes from the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// Purge drops every cached blob.
func (s *CachingStore) Purge() {
	s.cache.Purge()
}
