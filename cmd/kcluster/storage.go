package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/kcluster/blobstore"
	"github.com/hupe1980/kcluster/blobstore/minio"
	"github.com/hupe1980/kcluster/blobstore/s3"
	"github.com/hupe1980/kcluster/registry"
	"github.com/hupe1980/kcluster/registry/dynamodb"
)

// registryCacheBytes bounds the registry documents kept in memory.
const registryCacheBytes = 1 << 20

var (
	memMu     sync.Mutex
	memStores = map[string]*blobstore.MemoryStore{}
)

// memStore returns the process-wide memory store called name.
func memStore(name string) *blobstore.MemoryStore {
	memMu.Lock()
	defer memMu.Unlock()

	s, ok := memStores[name]
	if !ok {
		s = blobstore.NewMemoryStore()
		memStores[name] = s
	}
	return s
}

// openStore returns the store rooted at uri.
func openStore(ctx context.Context, uri string) (blobstore.BlobStore, error) {
	u, err := url.Parse(uri)
	if err != nil || len(u.Scheme) < 2 {
		// bare paths, including Windows drive letters
		return blobstore.NewLocalStore(uri), nil
	}

	prefix := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return blobstore.NewLocalStore("/"), nil
		}
		return blobstore.NewLocalStore(u.Path), nil
	case "mem":
		return memStore(u.Host + u.Path), nil
	case "s3":
		return s3.New(ctx, u.Host, s3.WithPrefix(prefix))
	case "minio":
		bucket, prefix, _ := strings.Cut(prefix, "/")
		if bucket == "" {
			return nil, fmt.Errorf("missing bucket in %q", uri)
		}
		return minio.New(u.Host, bucket,
			minio.WithCredentials(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY")),
			minio.WithSecure(os.Getenv("MINIO_SECURE") == "true"),
			minio.WithPrefix(prefix),
		)
	default:
		return nil, fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
}

// openBlob splits uri into the store holding the blob and the blob name.
func openBlob(ctx context.Context, uri string) (blobstore.BlobStore, string, error) {
	i := strings.LastIndexAny(uri, "/"+string(filepath.Separator))
	root, name := ".", uri
	if i >= 0 {
		root, name = uri[:i], uri[i+1:]
	}
	if name == "" {
		return nil, "", fmt.Errorf("missing blob name in %q", uri)
	}
	if root == "" {
		root = "/"
	}

	store, err := openStore(ctx, root)
	if err != nil {
		return nil, "", err
	}
	return store, name, nil
}

func putBlob(ctx context.Context, uri string, data []byte) error {
	store, name, err := openBlob(ctx, uri)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

func getBlob(ctx context.Context, uri string) ([]byte, error) {
	store, name, err := openBlob(ctx, uri)
	if err != nil {
		return nil, err
	}
	return blobstore.Get(ctx, store, name)
}

// openRegistry returns the registry at uri. dynamodb://table selects the
// DynamoDB registry; every other location holds one document per run.
func openRegistry(ctx context.Context, uri string) (registry.Registry, error) {
	if uri == "" {
		return nil, errors.New("missing registry location")
	}
	if table, ok := strings.CutPrefix(uri, "dynamodb://"); ok {
		return dynamodb.New(ctx, table)
	}

	store, err := openStore(ctx, uri)
	if err != nil {
		return nil, err
	}
	return registry.NewBlob(blobstore.NewCachingStore(store, registryCacheBytes, nil)), nil
}
