package config

import (
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	BlobBackendFS = "fs"
	BlobBackendS3 = "s3"
)

// ErrMissingSecret возвращается, если не задан секрет подписи сессий.
var ErrMissingSecret = errors.New("AUTH_SECRET is required")

type Config struct {
	// Server settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Sessions
	SessionTTL time.Duration `env:"SESSION_TTL"`

	// Uploads
	UploadDir       string `env:"UPLOAD_DIR"`
	UploadMaxSizeMB int    `env:"UPLOAD_MAX_MB"`
	QuotaMB         int    `env:"QUOTA_MB"`

	// Blob backend: "fs" (default) or "s3"
	BlobBackend string `env:"BLOB_BACKEND"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Prefix    string `env:"S3_PREFIX"`
	S3PathStyle bool   `env:"S3_PATH_STYLE"`

	LogProduction bool `env:"LOG_PRODUCTION"`
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

// NewConfig собирает конфигурацию из .env, окружения и флагов.
// Без секрета подписи сессий сервер не стартует.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// flags работают как переопределение значений из env
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (путь к SQLite или DSN Postgres)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи сессий")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера в формате host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "сервер за HTTPS (Secure cookie)")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "время жизни сессии")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог для файлов пользователей")
	flag.IntVar(&cfg.UploadMaxSizeMB, "upload-max-mb", cfg.UploadMaxSizeMB, "максимальный размер загрузки, МБ")
	flag.StringVar(&cfg.BlobBackend, "blob-backend", cfg.BlobBackend, "хранилище файлов: fs или s3")

	flag.Parse()

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = "filevault.db"
	}
	// BaseURL должен быть в виде "address:port", иначе используем дефолт
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = "localhost:8080"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadMaxSizeMB <= 0 {
		c.UploadMaxSizeMB = 50
	}
	if c.QuotaMB <= 0 {
		c.QuotaMB = 100
	}
	c.BlobBackend = strings.ToLower(strings.TrimSpace(c.BlobBackend))
	if c.BlobBackend == "" {
		c.BlobBackend = BlobBackendFS
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.S3Prefix == "" {
		c.S3Prefix = "uploads/"
	}
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	if c.AuthSecret == "" {
		return ErrMissingSecret
	}
	switch c.BlobBackend {
	case BlobBackendFS:
	case BlobBackendS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 blob backend")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
	return nil
}

// IsPostgres сообщает, указывает ли DSN на Postgres, а не на файл SQLite.
func (c *Config) IsPostgres() bool {
	return IsPostgresDSN(c.DatabaseDSN)
}

func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
