// Package storage реализует ports.UserStorage поверх sqlx.
//
// Таблица users должна существовать заранее:
//
//	CREATE TABLE users (
//	    id         SERIAL PRIMARY KEY,
//	    username   TEXT NOT NULL,
//	    email      TEXT NOT NULL,
//	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
//	);
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GoArmGo/UsersAPI/internal/database"
	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// Column names for users table
var usersColumns = []string{
	"id",
	"username",
	"email",
	"created_at",
}

// UserStorage реализует интерфейс ports.UserStorage с использованием sqlx
type UserStorage struct {
	db             *sqlx.DB
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage.
// acquireTimeout ограничивает ожидание свободного соединения из пула.
func NewUserStorage(db *sqlx.DB, acquireTimeout time.Duration, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, acquireTimeout: acquireTimeout, logger: logger}
}

// CreateUser вставляет пользователя. Список колонок строится из заданных полей:
// created_at попадает в INSERT, только если передан явно.
func (s *UserStorage) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	start := time.Now()

	query, args := s.insertQuery(input)

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var user domain.User
	if err := conn.GetContext(ctx, &user, query, args...); err != nil {
		err = mapError(err)
		s.logger.Error("failed to insert user", "username", input.Username, "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created",
		"id", user.ID,
		"explicit_created_at", input.CreatedAt.IsPresent(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

func (s *UserStorage) insertQuery(input domain.CreateUserInput) (string, []any) {
	columns := []string{"username", "email"}
	args := []any{input.Username, input.Email}

	if createdAt, ok := input.CreatedAt.Get(); ok {
		columns = append(columns, "created_at")
		args = append(args, createdAt)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(
		"INSERT INTO users (%s) VALUES (%s) RETURNING %s",
		strings.Join(columns, ", "), placeholders, strings.Join(usersColumns, ", "),
	)
	return s.db.Rebind(query), args
}

// ListUsers возвращает всех пользователей либо одного по filter.ID
func (s *UserStorage) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM users", strings.Join(usersColumns, ", "))
	var args []any
	if id, ok := filter.ID.Get(); ok {
		query += " WHERE id = ?"
		args = append(args, id)
	}
	query = s.db.Rebind(query + " ORDER BY id")

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	users := []domain.User{}
	if err := conn.SelectContext(ctx, &users, query, args...); err != nil {
		err = mapError(err)
		s.logger.Error("failed to select users", "filtered", filter.ID.IsPresent(), "error", err)
		return nil, fmt.Errorf("select users: %w", err)
	}

	s.logger.Info("users listed",
		"filtered", filter.ID.IsPresent(),
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser заменяет username и email пользователя с заданным id
func (s *UserStorage) UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error) {
	start := time.Now()

	query := s.db.Rebind(fmt.Sprintf(
		"UPDATE users SET username = ?, email = ? WHERE id = ? RETURNING %s",
		strings.Join(usersColumns, ", "),
	))

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var user domain.User
	if err := conn.GetContext(ctx, &user, query, input.Username, input.Email, input.ID); err != nil {
		err = mapError(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("user to update not found", "id", input.ID)
		} else {
			s.logger.Error("failed to update user", "id", input.ID, "error", err)
		}
		return nil, fmt.Errorf("update user %d: %w", input.ID, err)
	}

	s.logger.Info("user updated",
		"id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// DeleteUser удаляет пользователя и возвращает удалённую строку
func (s *UserStorage) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	start := time.Now()

	query := s.db.Rebind(fmt.Sprintf(
		"DELETE FROM users WHERE id = ? RETURNING %s",
		strings.Join(usersColumns, ", "),
	))

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var user domain.User
	if err := conn.GetContext(ctx, &user, query, id); err != nil {
		err = mapError(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("user to delete not found", "id", id)
		} else {
			s.logger.Error("failed to delete user", "id", id, "error", err)
		}
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}

	s.logger.Info("user deleted",
		"id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// acquire берёт соединение из пула, ожидая не дольше acquireTimeout.
// Сам запрос выполняется уже под контекстом вызывающего.
func (s *UserStorage) acquire(ctx context.Context) (*sqlx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.db.Connx(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.logger.Error("connection pool exhausted", "timeout", s.acquireTimeout.String())
			return nil, fmt.Errorf("%w: no connection within %s", domain.ErrUnavailable, s.acquireTimeout)
		}
		err = mapError(err)
		s.logger.Error("failed to acquire connection", "error", err)
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// mapError переводит ошибки драйвера в ошибки предметной области
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := database.ErrorForSQLState(string(pqErr.Code)); mapped != nil {
			return fmt.Errorf("%w: %w", mapped, err)
		}
		return err
	}

	if database.IsConnectionError(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
