package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vfs "github.com/hupe1980/kcluster/internal/fs"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "datasets/blobs.kcm"
	data := []byte("hello world, this is a test blob for kcluster")

	require.NoError(t, store.Put(ctx, blobName, data))

	_, err := os.Stat(filepath.Join(tmpDir, "datasets", "blobs.kcm"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	_, err = blob.ReadAt(ctx, buf, int64(len(data)))
	assert.Equal(t, io.EOF, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	mapped, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, mapped)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "other.kcm", []byte("x")))
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"datasets/blobs.kcm", "other.kcm"}, names)

	names, err = store.List(ctx, "datasets/")
	require.NoError(t, err)
	assert.Equal(t, []string{"datasets/blobs.kcm"}, names)

	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Open(ctx, blobName)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_Overwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("first")))
	require.NoError(t, store.Put(ctx, "a", []byte("second")))

	data, err := Get(ctx, store, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalBlobStore_Canceled(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "a", nil), context.Canceled)
	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalBlobStore_PutFaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault vfs.Fault
	}{
		{"write", vfs.Fault{FailAfterBytes: 2}},
		{"sync", vfs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", vfs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", vfs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewLocalStore(dir)
			require.NoError(t, store.Put(ctx, "blob.kcm", []byte("old")))

			ffs := vfs.NewFaultyFS(nil)
			ffs.AddRule("blob.kcm", tt.fault)
			store.fs = ffs

			err := store.Put(ctx, "blob.kcm", []byte("new content"))
			require.ErrorIs(t, err, vfs.ErrInjected)

			data, err := Get(ctx, store, "blob.kcm")
			require.NoError(t, err)
			assert.Equal(t, "old", string(data), "a failed put must keep the previous blob")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary files must be removed")
		})
	}
}
