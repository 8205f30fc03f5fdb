package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageBackendSQLX = "sqlx"
	StorageBackendGorm = "gorm"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	ServerPort  string `env:"API_PORT" envDefault:"3000"`

	// Пул соединений: не больше DBMaxConns одновременных подключений,
	// получение соединения ограничено DBAcquireTimeout
	DBMaxConns       int           `env:"DB_MAX_CONNS" envDefault:"5"`
	DBAcquireTimeout time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"3s"`
	StorageBackend   string        `env:"STORAGE_BACKEND" envDefault:"sqlx"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Настройки для MinIO (нужны только воркеру экспорта)
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string `env:"MINIO_REGION"`

	// RabbitMQ опционален для сервера: без URL события не публикуются
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_events"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	switch c.StorageBackend {
	case StorageBackendSQLX, StorageBackendGorm:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (use %q or %q)", c.StorageBackend, StorageBackendSQLX, StorageBackendGorm)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBAcquireTimeout <= 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive, got %s", c.DBAcquireTimeout)
	}
	return nil
}

// EventsEnabled сообщает, настроена ли публикация событий в RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}

// ExportEnabled сообщает, заданы ли все параметры объектного хранилища.
func (c *Config) ExportEnabled() bool {
	return c.MinioEndpoint != "" &&
		c.MinioAccessKeyID != "" &&
		c.MinioSecretAccessKey != "" &&
		c.MinioBucketName != "" &&
		c.MinioRegion != ""
}
