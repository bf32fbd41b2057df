package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"pantry/internal/model"
)

// StorageKey names the single document that holds the whole item collection.
const StorageKey = "pantrypal_items"

// ErrBlobNotFound is returned by a BlobStore when nothing is stored under a key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the raw persistence collaborator: opaque bytes under a key.
// Implementations live in subpackages (postgres, sqlite, objectstore).
type BlobStore interface {
	// Get returns the bytes stored under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces whatever is stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// ItemRepository loads and saves the full item collection. It never reports
// failures: a broken store reads as empty and a failed write is dropped.
type ItemRepository interface {
	Load(ctx context.Context) []model.Item
	Save(ctx context.Context, items []model.Item)
}

// ItemStore is the JSON document adapter between the domain and a BlobStore.
type ItemStore struct {
	blobs BlobStore
	key   string
	log   zerolog.Logger
}

var _ ItemRepository = (*ItemStore)(nil)

// NewItemStore creates an ItemStore persisting under StorageKey.
func NewItemStore(blobs BlobStore, log zerolog.Logger) *ItemStore {
	return &ItemStore{blobs: blobs, key: StorageKey, log: log.With().Str("component", "item_store").Logger()}
}

// Load returns the stored collection. A missing, unreadable, or corrupt
// document yields an empty, non-nil slice.
func (s *ItemStore) Load(ctx context.Context) []model.Item {
	raw, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.log.Error().Err(err).Str("key", s.key).Msg("failed to load items")
		}
		return []model.Item{}
	}
	if len(raw) == 0 {
		return []model.Item{}
	}

	var items []model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("failed to parse items")
		return []model.Item{}
	}
	if items == nil {
		items = []model.Item{}
	}
	return items
}

// Save rewrites the whole collection. Errors are logged and swallowed.
func (s *ItemStore) Save(ctx context.Context, items []model.Item) {
	if items == nil {
		items = []model.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("failed to encode items")
		return
	}
	if err := s.blobs.Put(ctx, s.key, raw); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Int("count", len(items)).Msg("failed to save items")
	}
}
