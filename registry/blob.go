package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/kcluster/blobstore"
	"github.com/hupe1980/kcluster/codec"
)

// Blob is a Registry that stores one document per key in a BlobStore.
//
// The compare-and-store in Submit is serialized within the process only.
// Use the DynamoDB registry when several processes submit to the same key.
type Blob struct {
	store  blobstore.BlobStore
	prefix string
	codec  codec.Codec
	mu     sync.Mutex
}

// BlobOption configures NewBlob.
type BlobOption func(*Blob)

// WithPrefix stores documents under prefix.
func WithPrefix(prefix string) BlobOption {
	return func(b *Blob) { b.prefix = prefix }
}

// WithCodec sets the codec for new documents. Existing documents are
// decoded with the codec they were written with.
func WithCodec(c codec.Codec) BlobOption {
	return func(b *Blob) { b.codec = c }
}

// NewBlob returns a registry backed by store.
func NewBlob(store blobstore.BlobStore, optFns ...BlobOption) *Blob {
	b := &Blob{store: store, prefix: "runs/", codec: codec.Default}
	for _, fn := range optFns {
		fn(b)
	}
	return b
}

func (b *Blob) name(key Key) string {
	return b.prefix + key.String() + ".json"
}

// Best implements Registry.
func (b *Blob) Best(ctx context.Context, key Key) (*Record, error) {
	data, err := blobstore.Get(ctx, b.store, b.name(key))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

// Submit implements Registry.
func (b *Blob) Submit(ctx context.Context, rec *Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cur, err := b.Best(ctx, rec.Key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if !Better(rec, cur) {
		return false, nil
	}

	data, err := Encode(b.codec, rec)
	if err != nil {
		return false, err
	}
	if err := b.store.Put(ctx, b.name(rec.Key), data); err != nil {
		return false, err
	}
	return true, nil
}

// Encode writes rec as "<codec name>\n<document>".
func Encode(c codec.Codec, rec *Record) ([]byte, error) {
	doc, err := c.Marshal(rec)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(c.Name())+1+len(doc))
	out = append(out, c.Name()...)
	out = append(out, '\n')
	return append(out, doc...), nil
}

// Decode reads a document written by Encode.
func Decode(data []byte) (*Record, error) {
	name, doc, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("%w: missing codec header", ErrInvalidRecord)
	}
	c, err := codec.ByName(string(name))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := c.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return &rec, nil
}
