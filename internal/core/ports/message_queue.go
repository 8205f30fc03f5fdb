package ports

import (
	"context"

	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// UserEventPublisher публикует события об изменении пользователей.
// Используется бизнес-логикой после успешной записи в БД.
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event payloads.UserEventPayload) error
}

// UserEventConsumer потребляет события об изменении пользователей (воркер экспорта)
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди, handler вызывается для каждого сообщения
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) error
}
