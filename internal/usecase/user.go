package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// UserUseCase определяет интерфейс бизнес-логики работы с пользователями.
// Каждая операция выполняет один запрос к хранилищу.
type UserUseCase interface {
	// CreateUser создаёт пользователя; created_at назначает БД, если он не передан
	CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)

	// ListUsers возвращает всех пользователей или срез из одного элемента по id
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)

	// UpdateUser заменяет username и email
	UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error)

	// DeleteUser удаляет пользователя и возвращает удалённую строку
	DeleteUser(ctx context.Context, id int64) (*domain.User, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет файл из хранилища по его ключу.
	DeleteFile(ctx context.Context, key string) error
}
