package ports

import (
	"context"

	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Каждый метод выполняет ровно один SQL-запрос.
type UserStorage interface {
	// CreateUser вставляет строку и возвращает её целиком (с id и created_at из БД)
	CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)

	// ListUsers возвращает всех пользователей или только одного, если задан filter.ID.
	// Если строк нет, возвращается пустой срез без ошибки.
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)

	// UpdateUser заменяет username и email, возвращает domain.ErrUserNotFound, если строки нет
	UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error)

	// DeleteUser удаляет строку и возвращает её значения до удаления
	DeleteUser(ctx context.Context, id int64) (*domain.User, error)
}
