package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/adapter/storage/minio"
	"github.com/GoArmGo/UsersAPI/internal/app"
	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/database/client"
	"github.com/GoArmGo/UsersAPI/internal/database/postgres"
	"github.com/GoArmGo/UsersAPI/internal/database/storage"
	"github.com/GoArmGo/UsersAPI/internal/handler"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/messaging"
	"github.com/GoArmGo/UsersAPI/internal/rabbitmq"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// BuildApp загружает конфигурацию и собирает зависимости, нужные режиму mode.
func BuildApp(ctx context.Context, mode string) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	application := app.NewApp(cfg, slogger)

	switch mode {
	case app.ModeServer:
		err = buildServer(ctx, cfg, slogger, application)
	case app.ModeWorker:
		err = buildWorker(ctx, cfg, slogger, application)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, app.ModeServer, app.ModeWorker)
	}
	if err != nil {
		_ = application.Shutdown()
		return nil, err
	}

	slogger.Info("dependencies initialized", "mode", mode, "storage_backend", cfg.StorageBackend)
	return application, nil
}

func buildServer(ctx context.Context, cfg *config.Config, slogger *slog.Logger, application *app.App) error {
	userStorage, err := buildUserStorage(ctx, cfg, slogger, application)
	if err != nil {
		return err
	}

	var publisher ports.UserEventPublisher
	if cfg.EventsEnabled() {
		rabbitClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return err
		}
		application.AddCloser("rabbitmq", rabbitClient.Close)
		publisher = rabbitClient
	} else {
		slogger.Info("RABBITMQ_URL not set, user events are not published")
		publisher = messaging.NewNopPublisher(slogger)
	}

	userUseCase := usecase.NewUserUseCase(userStorage, publisher, slogger)
	application.WithHandler(handler.NewRouter(handler.NewUserHandler(userUseCase, slogger), slogger))
	return nil
}

// buildUserStorage выбирает реализацию хранилища по STORAGE_BACKEND
func buildUserStorage(ctx context.Context, cfg *config.Config, slogger *slog.Logger, application *app.App) (ports.UserStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendGorm:
		db, err := postgres.NewGormClient(ctx, cfg, slogger)
		if err != nil {
			return nil, err
		}
		application.AddCloser("database", func() error { return postgres.CloseGorm(db) })
		return postgres.NewGormUserStorage(db, cfg.DBAcquireTimeout, slogger), nil

	default:
		dbClient, err := client.NewClient(ctx, cfg, slogger)
		if err != nil {
			return nil, err
		}
		application.AddCloser("database", dbClient.Close)
		return storage.NewUserStorage(dbClient.DB, cfg.DBAcquireTimeout, slogger), nil
	}
}

func buildWorker(ctx context.Context, cfg *config.Config, slogger *slog.Logger, application *app.App) error {
	if !cfg.EventsEnabled() {
		return fmt.Errorf("worker mode requires RABBITMQ_URL")
	}

	rabbitClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return err
	}
	application.AddCloser("rabbitmq", rabbitClient.Close)

	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		return err
	}

	application.WithExport(rabbitClient, usecase.NewUserExporter(fileStorage, slogger))
	return nil
}
