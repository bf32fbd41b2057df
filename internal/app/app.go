// Package app builds the configured collaborators shared by the pantry
// binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/database/migration"
	"pantry/internal/extraction"
	"pantry/internal/notify"
	"pantry/internal/repository"
	"pantry/internal/repository/objectstore"
	"pantry/internal/repository/postgres"
	"pantry/internal/repository/sqlite"
	"pantry/internal/storage"
)

// OpenStore connects the BlobStore selected by cfg.Store.Driver. The
// returned close func releases any connection it opened.
func OpenStore(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (repository.BlobStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite, "":
		db, err := database.NewSQLite(cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite handle: %w", err)
		}
		store, err := sqlite.NewBlobSQLite(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, func() { _ = sqlDB.Close() }, nil

	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := migration.EnsureMigrated(mctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewBlobPostgres(db), func() { _ = db.Close() }, nil

	case config.StoreMinIO:
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		return objectstore.NewBlobObject(objStore), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewExtractor returns the Gemini extractor behind an LRU cache, or
// extraction.Disabled when no API key is configured.
func NewExtractor(ctx context.Context, cfg config.ExtractionConfig, log zerolog.Logger) extraction.Extractor {
	if cfg.APIKey == "" {
		log.Info().Msg("extraction disabled: no API key")
		return extraction.Disabled{}
	}
	g, err := extraction.NewGemini(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		log.Error().Err(err).Msg("extraction disabled")
		return extraction.Disabled{}
	}
	if cfg.CacheSize <= 0 {
		return g
	}
	return extraction.NewCached(g, cfg.CacheSize, time.Duration(cfg.CacheTTLSec)*time.Second)
}

// NewNotifier returns the delivery channel selected by cfg.Driver.
func NewNotifier(cfg config.NotifyConfig, log zerolog.Logger) (notify.Notifier, error) {
	switch cfg.Driver {
	case config.NotifyNone:
		return notify.Disabled{}, nil
	case config.NotifyLog, "":
		return notify.NewLog(log.With().Str("component", "notifier").Logger()), nil
	case config.NotifyWebhook:
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("NOTIFY_WEBHOOK_URL is required for the webhook notifier")
		}
		return notify.NewWebhook(cfg.WebhookURL), nil
	case config.NotifyTelegram:
		if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
			return nil, fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier")
		}
		return notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}
