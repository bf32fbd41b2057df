package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/repository"
)

// Blob is one keyed document row.
type Blob struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// BlobSQLite stores blobs in a local SQLite file through gorm.
type BlobSQLite struct {
	db *gorm.DB
}

// NewBlobSQLite creates a BlobSQLite and migrates its table.
func NewBlobSQLite(db *gorm.DB) (*BlobSQLite, error) {
	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("migrate blobs: %w", err)
	}
	return &BlobSQLite{db: db}, nil
}

var _ repository.BlobStore = (*BlobSQLite)(nil)

func (r *BlobSQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var blob Blob
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		First(&blob).Error
	switch {
	case err == nil:
		return blob.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repository.ErrBlobNotFound
	default:
		return nil, fmt.Errorf("find blob: %w", err)
	}
}

func (r *BlobSQLite) Put(ctx context.Context, key string, value []byte) error {
	blob := Blob{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("save blob: %w", err)
	}
	return nil
}

func (r *BlobSQLite) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
