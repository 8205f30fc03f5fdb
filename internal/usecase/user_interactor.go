package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	publisher   ports.UserEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher получает событие после каждого успешного изменения.
func NewUserUseCase(
	userStorage ports.UserStorage,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		userStorage: userStorage,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	user, err := uc.userStorage.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, payloads.UserCreated, user)
	return user, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	return uc.userStorage.ListUsers(ctx, filter)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error) {
	user, err := uc.userStorage.UpdateUser(ctx, input)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, payloads.UserUpdated, user)
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := uc.userStorage.DeleteUser(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, payloads.UserDeleted, user)
	return user, nil
}

// publish не влияет на результат запроса: изменение уже записано в БД,
// ошибка публикации только логируется.
func (uc *userUseCase) publish(ctx context.Context, eventType string, user *domain.User) {
	event := payloads.UserEventPayload{
		ID:         uuid.NewString(),
		Type:       eventType,
		User:       *user,
		OccurredAt: uc.now().UTC(),
	}
	// изменение уже записано: отключение клиента не должно отменять публикацию
	if err := uc.publisher.PublishUserEvent(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.Error("failed to publish user event",
			"event_id", event.ID,
			"type", eventType,
			"user_id", user.ID,
			"error", err,
		)
	}
}
