package messaging

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// NopPublisher используется, когда RABBITMQ_URL не задан: события только пишутся в debug-лог.
type NopPublisher struct {
	logger *slog.Logger
}

func NewNopPublisher(logger *slog.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) PublishUserEvent(_ context.Context, event payloads.UserEventPayload) error {
	p.logger.Debug("event publishing disabled, dropping user event",
		"event_id", event.ID,
		"type", event.Type,
		"user_id", event.User.ID,
	)
	return nil
}
