package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// Режимы запуска
const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// closer — ресурс, который закрывается при остановке приложения
type closer struct {
	name  string
	close func() error
}

// App собирает всё, что нужно выбранному режиму.
// Серверу нужен handler, воркеру нужны consumer и exporter.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  http.Handler
	consumer ports.UserEventConsumer
	exporter *usecase.UserExporter
	closers  []closer
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// WithHandler задаёт HTTP-обработчик режима server
func (a *App) WithHandler(h http.Handler) *App {
	a.handler = h
	return a
}

// WithExport задаёт источник событий и экспортёр режима worker
func (a *App) WithExport(consumer ports.UserEventConsumer, exporter *usecase.UserExporter) *App {
	a.consumer = consumer
	a.exporter = exporter
	return a
}

// AddCloser регистрирует ресурс; закрываются в обратном порядке
func (a *App) AddCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run работает до SIGINT/SIGTERM или до фатальной ошибки режима.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Shutdown()

	a.logger.Info("starting", "mode", mode)

	switch mode {
	case ModeServer:
		if a.handler == nil {
			return errors.New("server mode requires an HTTP handler")
		}
		return runServer(ctx, a.cfg, a.logger, a.handler)

	case ModeWorker:
		if a.consumer == nil || a.exporter == nil {
			return errors.New("worker mode requires RabbitMQ and MinIO settings")
		}
		return runWorker(ctx, a.logger, a.consumer, a.exporter)

	default:
		return fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}
}

// Shutdown закрывает ресурсы; ошибки логируются, первая возвращается.
func (a *App) Shutdown() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error("failed to close resource", "resource", c.name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("close %s: %w", c.name, err)
			}
		}
	}
	a.closers = nil
	return firstErr
}
