package domain

import (
	"github.com/samber/mo"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID        int64      `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	CreatedAt *Timestamp `json:"created_at" db:"created_at"`
}

// CreateUserInput — данные для создания пользователя.
// CreatedAt пустой, если время создания должна назначить БД.
type CreateUserInput struct {
	Username  string
	Email     string
	CreatedAt mo.Option[Timestamp]
}

// UpdateUserInput — полная замена username и email существующего пользователя.
type UpdateUserInput struct {
	ID       int64
	Username string
	Email    string
}

// UserFilter ограничивает выборку пользователей. Пустой ID означает "все".
type UserFilter struct {
	ID mo.Option[int64]
}
