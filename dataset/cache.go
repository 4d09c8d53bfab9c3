package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/kcluster/blobstore"
	"github.com/hupe1980/kcluster/internal/cache"
	"github.com/hupe1980/kcluster/resource"
)

// ErrClosed is returned by a Cache after Close.
var ErrClosed = errors.New("dataset: cache closed")

// DefaultCacheCapacity is the default number of decoded bytes kept in memory.
const DefaultCacheCapacity = 1 << 30

// Cache loads datasets from a BlobStore and keeps the decoded result so a
// dataset is read and decoded at most once while it stays cached.
// Concurrent loads of the same dataset share one read.
type Cache struct {
	store  blobstore.BlobStore
	lru    *cache.LRU[*Dataset]
	group  singleflight.Group
	rc     *resource.Controller
	logger *slog.Logger

	// mu orders admissions against Close so that nothing is admitted after
	// the purge.
	mu     sync.Mutex
	closed atomic.Bool
}

type cacheOptions struct {
	capacity   int64
	controller *resource.Controller
	logger     *slog.Logger
}

// CacheOption configures NewCache.
type CacheOption func(*cacheOptions)

// WithCapacity bounds the decoded bytes kept in memory.
func WithCapacity(bytes int64) CacheOption {
	return func(o *cacheOptions) { o.capacity = bytes }
}

// WithResourceController charges cached datasets against the controller's
// memory limit and reads blobs under its IO limit.
func WithResourceController(rc *resource.Controller) CacheOption {
	return func(o *cacheOptions) { o.controller = rc }
}

// WithLogger sets the logger for load events.
func WithLogger(l *slog.Logger) CacheOption {
	return func(o *cacheOptions) { o.logger = l }
}

// NewCache returns an empty cache over store. The caller owns the cache and
// must Close it.
func NewCache(store blobstore.BlobStore, optFns ...CacheOption) *Cache {
	o := cacheOptions{capacity: DefaultCacheCapacity}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	return &Cache{
		store:  store,
		lru:    cache.New(o.capacity, (*Dataset).Size, o.controller),
		rc:     o.controller,
		logger: o.logger,
	}
}

// Load returns the dataset stored under name. The returned dataset is shared
// with other callers and must not be modified; use Select for a private copy.
func (c *Cache) Load(ctx context.Context, name string) (*Dataset, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if ds, ok := c.lru.Get(name); ok {
		return ds, nil
	}

	v, err, shared := c.group.Do(name, func() (any, error) {
		ds, err := c.read(ctx, name)
		if err != nil {
			return nil, err
		}
		c.admit(ctx, name, ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "dataset load shared", "name", name)
	}
	return v.(*Dataset), nil
}

func (c *Cache) admit(ctx context.Context, name string, ds *Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return
	}
	if !c.lru.Set(name, ds) {
		c.logger.WarnContext(ctx, "dataset not cached", "name", name, "bytes", ds.Size())
	}
}

func (c *Cache) read(ctx context.Context, name string) (*Dataset, error) {
	blob, err := c.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	var ds *Dataset
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		ds, err = Unmarshal(data)
		if err != nil {
			return nil, err
		}
	} else {
		r := resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, blob), c.rc)
		if ds, err = Decode(r); err != nil {
			return nil, err
		}
	}

	rows, cols := ds.Features.Dims()
	c.logger.InfoContext(ctx, "dataset loaded",
		"name", name,
		"rows", rows,
		"cols", cols,
		"categories", ds.Categories,
		"bytes", blob.Size(),
	)
	return ds, nil
}

// Select loads name and returns a private copy restricted by sel.
func (c *Cache) Select(ctx context.Context, name string, sel Selection) (*Dataset, error) {
	ds, err := c.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return ds.Select(sel)
}

// Evict drops name from the cache.
func (c *Cache) Evict(name string) {
	c.lru.Remove(name)
}

// Stats returns the cache hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.lru.Stats()
}

// Close drops every cached dataset and releases its memory. Further loads
// fail with ErrClosed. Close is idempotent.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.CompareAndSwap(false, true) {
		c.lru.Purge()
	}
	return nil
}
