package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// runWorker передаёт события из очереди экспортёру и ждёт отмены ctx
func runWorker(ctx context.Context, logger *slog.Logger, consumer ports.UserEventConsumer, exporter *usecase.UserExporter) error {
	if err := consumer.StartConsumingUserEvents(ctx, exporter.HandleUserEvent); err != nil {
		return fmt.Errorf("start consuming user events: %w", err)
	}

	logger.Info("worker started, waiting for user events")
	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}
