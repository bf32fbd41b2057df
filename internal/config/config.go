package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMinIO    = "minio"
)

// Notify drivers.
const (
	NotifyNone     = "none"
	NotifyLog      = "log"
	NotifyWebhook  = "webhook"
	NotifyTelegram = "telegram"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects where the item collection is persisted.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// ExtractionConfig configures the text-to-items collaborator.
type ExtractionConfig struct {
	APIKey      string
	Model       string
	CacheSize   int
	CacheTTLSec int
}

// NotifyConfig configures how expiry warnings are delivered.
type NotifyConfig struct {
	Driver         string
	WebhookURL     string
	TelegramToken  string
	TelegramChatID int64
	WarningDays    int
	// DailyAt is an HH:MM time for the scheduled scan; empty disables it.
	DailyAt string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Timezone   string
	LogLevel   string
	Store      StoreConfig
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Extraction ExtractionConfig
	Notify     NotifyConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "Local"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "data/pantry.db"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Extraction: ExtractionConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			CacheSize:   getEnvInt("EXTRACTION_CACHE_SIZE", 128),
			CacheTTLSec: getEnvInt("EXTRACTION_CACHE_TTL_SEC", 600),
		},
		Notify: NotifyConfig{
			Driver:         strings.ToLower(getEnv("NOTIFY_DRIVER", NotifyLog)),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
			TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),
			WarningDays:    getEnvInt("EXPIRY_WARNING_DAYS", 3),
			DailyAt:        strings.TrimSpace(getEnv("NOTIFY_DAILY_AT", "")),
		},
	}
}

// Location resolves Timezone, falling back to the process local zone when it
// is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
