package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/logger"
)

const sqliteSchema = `
CREATE TABLE users (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username   TEXT NOT NULL,
    email      TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// newSQLiteStorage поднимает in-memory sqlite с той же схемой users.
// Одно соединение: у каждого соединения :memory: своя база.
func newSQLiteStorage(t *testing.T) (*UserStorage, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)

	return NewUserStorage(db, time.Second, logger.Discard()), db
}

func createUser(t *testing.T, s *UserStorage, username, email string) *domain.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), domain.CreateUserInput{
		Username:  username,
		Email:     email,
		CreatedAt: mo.None[domain.Timestamp](),
	})
	require.NoError(t, err)
	return user
}

func TestUserStorage_CreateUser_StorageAssignsIDAndCreatedAt(t *testing.T) {
	s, _ := newSQLiteStorage(t)

	user := createUser(t, s, "alice", "a@x.com")

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	require.NotNil(t, user.CreatedAt)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserStorage_CreateUser_ExplicitCreatedAt(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	createdAt := domain.NewTimestamp(time.Date(2020, 5, 17, 8, 30, 0, 0, time.UTC))

	user, err := s.CreateUser(context.Background(), domain.CreateUserInput{
		Username:  "bob",
		Email:     "b@x.com",
		CreatedAt: mo.Some(createdAt),
	})
	require.NoError(t, err)

	require.NotNil(t, user.CreatedAt)
	assert.True(t, createdAt.Equal(user.CreatedAt.Time), "got %s", user.CreatedAt)
}

func TestUserStorage_InsertQuery_ColumnsFollowOptionalFields(t *testing.T) {
	s, _ := newSQLiteStorage(t)

	query, args := s.insertQuery(domain.CreateUserInput{Username: "a", Email: "b"})
	assert.Equal(t, "INSERT INTO users (username, email) VALUES (?, ?) RETURNING id, username, email, created_at", query)
	assert.Len(t, args, 2)

	ts := domain.NewTimestamp(time.Now())
	query, args = s.insertQuery(domain.CreateUserInput{Username: "a", Email: "b", CreatedAt: mo.Some(ts)})
	assert.Equal(t, "INSERT INTO users (username, email, created_at) VALUES (?, ?, ?) RETURNING id, username, email, created_at", query)
	assert.Equal(t, []any{"a", "b", ts}, args)
}

func TestUserStorage_InsertQuery_PostgresPlaceholders(t *testing.T) {
	db := sqlx.NewDb(nil, "postgres")
	s := NewUserStorage(db, time.Second, logger.Discard())

	query, _ := s.insertQuery(domain.CreateUserInput{
		Username:  "a",
		Email:     "b",
		CreatedAt: mo.Some(domain.NewTimestamp(time.Now())),
	})
	assert.Equal(t, "INSERT INTO users (username, email, created_at) VALUES ($1, $2, $3) RETURNING id, username, email, created_at", query)
}

func TestUserStorage_ListUsers(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	empty, err := s.ListUsers(ctx, domain.UserFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	alice := createUser(t, s, "alice", "a@x.com")
	bob := createUser(t, s, "bob", "b@x.com")
	createUser(t, s, "carol", "c@x.com")

	all, err := s.ListUsers(ctx, domain.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, alice.ID, all[0].ID)

	one, err := s.ListUsers(ctx, domain.UserFilter{ID: mo.Some(bob.ID)})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, bob.ID, one[0].ID)
	assert.Equal(t, "bob", one[0].Username)

	none, err := s.ListUsers(ctx, domain.UserFilter{ID: mo.Some(int64(9999))})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUserStorage_UpdateUser(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()
	original := createUser(t, s, "alice", "a@x.com")

	updated, err := s.UpdateUser(ctx, domain.UpdateUserInput{
		ID:       original.ID,
		Username: "alice2",
		Email:    "a2@x.com",
	})
	require.NoError(t, err)

	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "a2@x.com", updated.Email)
	require.NotNil(t, updated.CreatedAt)
	assert.True(t, original.CreatedAt.Equal(updated.CreatedAt.Time))

	_, err = s.UpdateUser(ctx, domain.UpdateUserInput{ID: original.ID + 100, Username: "x", Email: "y"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStorage_DeleteUser(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", "a@x.com")
	bob := createUser(t, s, "bob", "b@x.com")

	deleted, err := s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, deleted.ID)
	assert.Equal(t, "alice", deleted.Username)
	assert.Equal(t, "a@x.com", deleted.Email)

	remaining, err := s.ListUsers(ctx, domain.UserFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bob.ID, remaining[0].ID)

	_, err = s.DeleteUser(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStorage_AcquireTimeout(t *testing.T) {
	s, db := newSQLiteStorage(t)
	s.acquireTimeout = 50 * time.Millisecond

	// единственное соединение пула занято
	held, err := db.Connx(context.Background())
	require.NoError(t, err)
	defer held.Close()

	_, err = s.ListUsers(context.Background(), domain.UserFilter{})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505", Message: "duplicate key"}, want: domain.ErrConflict},
		{name: "numeric out of range", err: &pq.Error{Code: "22003"}, want: domain.ErrValidation},
		{name: "admin shutdown", err: fmt.Errorf("query: %w", &pq.Error{Code: "57P01"}), want: domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.ErrorIs(t, got, tt.want)

			var pqErr *pq.Error
			assert.True(t, errors.As(got, &pqErr), "original driver error must stay in the chain")
		})
	}

	plain := errors.New("syntax error")
	assert.Equal(t, plain, mapError(plain))
}
