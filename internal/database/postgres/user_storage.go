package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoArmGo/UsersAPI/internal/database"
	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// userRecord — строка таблицы users для GORM.
// created_at не заполняется GORM'ом: если значение не задано,
// колонка пропускается в INSERT и возвращается из БД через RETURNING.
type userRecord struct {
	ID        int64             `gorm:"column:id;primaryKey"`
	Username  string            `gorm:"column:username"`
	Email     string            `gorm:"column:email"`
	CreatedAt *domain.Timestamp `gorm:"column:created_at;autoCreateTime:false;default:now()"`
}

func (userRecord) TableName() string {
	return "users"
}

func (r userRecord) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db      *gorm.DB
	timeout time.Duration
	logger  *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage.
// GORM не отделяет получение соединения от выполнения запроса,
// поэтому timeout ограничивает запрос целиком.
func NewGormUserStorage(db *gorm.DB, timeout time.Duration, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, timeout: timeout, logger: logger}
}

// CreateUser сохраняет пользователя с помощью GORM
func (s *GormUserStorage) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec := userRecord{Username: input.Username, Email: input.Email}
	if createdAt, ok := input.CreatedAt.Get(); ok {
		rec.CreatedAt = &createdAt
	}

	if err := insertUserStmt(s.db.WithContext(ctx), &rec).Error; err != nil {
		err = mapGormError(err)
		s.logger.Error("failed to insert user with GORM", "username", input.Username, "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created (GORM)",
		"id", rec.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	user := rec.toDomain()
	return &user, nil
}

// ListUsers получает пользователей с помощью GORM
func (s *GormUserStorage) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var records []userRecord
	if err := listUsersStmt(s.db.WithContext(ctx), filter, &records).Error; err != nil {
		err = mapGormError(err)
		s.logger.Error("failed to select users with GORM", "error", err)
		return nil, fmt.Errorf("select users: %w", err)
	}

	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.toDomain())
	}

	s.logger.Info("users listed (GORM)",
		"filtered", filter.ID.IsPresent(),
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser обновляет username и email одним UPDATE ... RETURNING
func (s *GormUserStorage) UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rec userRecord
	result := updateUserStmt(s.db.WithContext(ctx), &rec, input)
	if result.Error != nil {
		err := mapGormError(result.Error)
		s.logger.Error("failed to update user with GORM", "id", input.ID, "error", err)
		return nil, fmt.Errorf("update user %d: %w", input.ID, err)
	}
	if result.RowsAffected == 0 {
		s.logger.Warn("user to update not found", "id", input.ID)
		return nil, fmt.Errorf("update user %d: %w", input.ID, domain.ErrUserNotFound)
	}

	s.logger.Info("user updated (GORM)",
		"id", rec.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	user := rec.toDomain()
	return &user, nil
}

// DeleteUser удаляет пользователя одним DELETE ... RETURNING
func (s *GormUserStorage) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rec userRecord
	result := deleteUserStmt(s.db.WithContext(ctx), &rec, id)
	if result.Error != nil {
		err := mapGormError(result.Error)
		s.logger.Error("failed to delete user with GORM", "id", id, "error", err)
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}
	if result.RowsAffected == 0 {
		s.logger.Warn("user to delete not found", "id", id)
		return nil, fmt.Errorf("delete user %d: %w", id, domain.ErrUserNotFound)
	}

	s.logger.Info("user deleted (GORM)",
		"id", rec.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	user := rec.toDomain()
	return &user, nil
}

// insertUserStmt пропускает created_at, если он не задан: значение
// назначает БД и возвращает через RETURNING вместе с id
func insertUserStmt(tx *gorm.DB, rec *userRecord) *gorm.DB {
	return tx.Create(rec)
}

func listUsersStmt(tx *gorm.DB, filter domain.UserFilter, dst *[]userRecord) *gorm.DB {
	tx = tx.Order("id")
	if id, ok := filter.ID.Get(); ok {
		tx = tx.Where("id = ?", id)
	}
	return tx.Find(dst)
}

// updateUserStmt — UPDATE ... RETURNING *, строка после изменения попадает в rec
func updateUserStmt(tx *gorm.DB, rec *userRecord, input domain.UpdateUserInput) *gorm.DB {
	rec.ID = input.ID
	return tx.Model(rec).
		Clauses(clause.Returning{}).
		Updates(map[string]interface{}{
			"username": input.Username,
			"email":    input.Email,
		})
}

// deleteUserStmt — DELETE ... RETURNING *, удалённая строка попадает в rec
func deleteUserStmt(tx *gorm.DB, rec *userRecord, id int64) *gorm.DB {
	return tx.Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(rec)
}

// mapGormError переводит ошибки GORM и pgx в ошибки предметной области
func mapGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := database.ErrorForSQLState(pgErr.Code); mapped != nil {
			return fmt.Errorf("%w: %w", mapped, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || database.IsConnectionError(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
