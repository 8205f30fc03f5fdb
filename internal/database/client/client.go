package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	// драйвер postgres для database/sql
	_ "github.com/lib/pq"

	"github.com/GoArmGo/UsersAPI/internal/config"
)

// Client представляет пул соединений с PostgreSQL поверх sqlx
type Client struct {
	DB     *sqlx.DB
	logger *slog.Logger
}

// NewClient открывает пул соединений и проверяет доступность БД.
// Если БД не ответила за cfg.DBAcquireTimeout, возвращается ошибка.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	ConfigurePool(db, cfg.DBMaxConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBAcquireTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		logger.Error("failed to ping database", "timeout", cfg.DBAcquireTimeout.String(), "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("PostgreSQL connection established successfully",
		"max_conns", cfg.DBMaxConns,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, logger: logger}, nil
}

// ConfigurePool ограничивает пул maxConns соединениями
func ConfigurePool(db *sqlx.DB, maxConns int) {
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
