package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pantry/internal/repository"
)

// BlobPostgres is a PostgreSQL implementation of repository.BlobStore.
// It uses database/sql with parameterized queries and contains no business logic.
type BlobPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewBlobPostgres creates a new BlobPostgres store.
func NewBlobPostgres(db *sql.DB) *BlobPostgres {
	return &BlobPostgres{db: db, now: time.Now}
}

var _ repository.BlobStore = (*BlobPostgres)(nil)

// Get fetches the value stored under key.
func (r *BlobPostgres) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM blobs WHERE key = $1`

	var value []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrBlobNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put upserts the value under key. The previous value is replaced whole.
func (r *BlobPostgres) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, key, value, r.now().UTC())
	return err
}

// Ping verifies database connectivity.
func (r *BlobPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
