package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoArmGo/UsersAPI/internal/config"
)

// NewGormClient открывает подключение к PostgreSQL через GORM (драйвер pgx)
// с тем же ограничением пула, что и sqlx-клиент.
func NewGormClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	start := time.Now()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slogWriter{logger: logger}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		logger.Error("failed to open PostgreSQL connection with GORM", "error", err)
		return nil, fmt.Errorf("open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBAcquireTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		logger.Error("failed to ping database", "timeout", cfg.DBAcquireTimeout.String(), "error", err)
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("PostgreSQL connection established successfully (GORM)",
		"max_conns", cfg.DBMaxConns,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return db, nil
}

// CloseGorm закрывает пул соединений под GORM
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// slogWriter направляет журнал GORM в slog
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
