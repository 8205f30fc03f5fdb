package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// ExportKey возвращает ключ объекта с копией пользователя в файловом хранилище
func ExportKey(userID int64) string {
	return fmt.Sprintf("users/%d.json", userID)
}

// UserExporter поддерживает в файловом хранилище JSON-копию каждой строки users.
// Вызывается воркером для каждого события из очереди.
type UserExporter struct {
	fileStorage FileStorage
	logger      *slog.Logger
}

func NewUserExporter(fileStorage FileStorage, logger *slog.Logger) *UserExporter {
	return &UserExporter{fileStorage: fileStorage, logger: logger}
}

// HandleUserEvent применяет событие к хранилищу. Ошибка означает,
// что сообщение нужно вернуть в очередь.
func (e *UserExporter) HandleUserEvent(ctx context.Context, event payloads.UserEventPayload) error {
	key := ExportKey(event.User.ID)

	switch event.Type {
	case payloads.UserCreated, payloads.UserUpdated:
		body, err := json.Marshal(event.User)
		if err != nil {
			return fmt.Errorf("marshal user %d: %w", event.User.ID, err)
		}
		url, err := e.fileStorage.UploadFile(ctx, key, bytes.NewReader(body), "application/json")
		if err != nil {
			return fmt.Errorf("export user %d: %w", event.User.ID, err)
		}
		e.logger.Info("user exported", "event_id", event.ID, "user_id", event.User.ID, "url", url)

	case payloads.UserDeleted:
		if err := e.fileStorage.DeleteFile(ctx, key); err != nil {
			return fmt.Errorf("remove export of user %d: %w", event.User.ID, err)
		}
		e.logger.Info("user export removed", "event_id", event.ID, "user_id", event.User.ID)

	default:
		// неизвестный тип не повторяем: повтор не поможет
		e.logger.Warn("skipping unknown user event", "event_id", event.ID, "type", event.Type)
	}
	return nil
}
