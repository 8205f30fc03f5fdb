package payloads

import (
	"time"

	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// Типы событий об изменении пользователя
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEventPayload представляет событие об изменении пользователя,
// которое передаётся через RabbitMQ.
type UserEventPayload struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	User       domain.User `json:"user"`
	OccurredAt time.Time   `json:"occurred_at"`
}
