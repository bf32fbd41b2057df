package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"pantry/internal/repository"
	"pantry/internal/storage"
)

const contentType = "application/json"

// BlobObject keeps each blob as a single JSON object in an S3-compatible bucket.
// The object key is the blob key with a ".json" suffix.
type BlobObject struct {
	store storage.Storage
}

// NewBlobObject creates a BlobObject over the given storage client.
func NewBlobObject(store storage.Storage) *BlobObject {
	return &BlobObject{store: store}
}

var _ repository.BlobStore = (*BlobObject)(nil)

func objectKey(key string) string {
	return key + ".json"
}

func (r *BlobObject) Get(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := r.store.Get(ctx, objectKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, repository.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return b, nil
}

func (r *BlobObject) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.store.Put(ctx, objectKey(key), bytes.NewReader(value), storage.PutObjectOptions{
		Size:        int64(len(value)),
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (r *BlobObject) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
