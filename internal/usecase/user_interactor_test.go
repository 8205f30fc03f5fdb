package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUseCase() (*userUseCase, *ports.MockUserStorage, *ports.MockUserEventPublisher) {
	storage := &ports.MockUserStorage{}
	publisher := &ports.MockUserEventPublisher{}
	uc := NewUserUseCase(storage, publisher, logger.Discard()).(*userUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc, storage, publisher
}

func eventFor(eventType string, userID int64) interface{} {
	return mock.MatchedBy(func(e payloads.UserEventPayload) bool {
		return e.Type == eventType &&
			e.User.ID == userID &&
			e.ID != "" &&
			e.OccurredAt.Equal(fixedNow)
	})
}

func TestUserUseCase_CreateUser(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*ports.MockUserStorage, *ports.MockUserEventPublisher)
		wantUser  *domain.User
		wantErr   error
	}{
		{
			name: "success - publishes created event",
			mockSetup: func(s *ports.MockUserStorage, p *ports.MockUserEventPublisher) {
				s.On("CreateUser", mock.Anything, mock.Anything).
					Return(&domain.User{ID: 1, Username: "alice", Email: "a@x.com"}, nil)
				p.On("PublishUserEvent", mock.Anything, eventFor(payloads.UserCreated, 1)).Return(nil)
			},
			wantUser: &domain.User{ID: 1, Username: "alice", Email: "a@x.com"},
		},
		{
			name: "publish failure does not fail the request",
			mockSetup: func(s *ports.MockUserStorage, p *ports.MockUserEventPublisher) {
				s.On("CreateUser", mock.Anything, mock.Anything).
					Return(&domain.User{ID: 2, Username: "bob", Email: "b@x.com"}, nil)
				p.On("PublishUserEvent", mock.Anything, eventFor(payloads.UserCreated, 2)).
					Return(errors.New("broker down"))
			},
			wantUser: &domain.User{ID: 2, Username: "bob", Email: "b@x.com"},
		},
		{
			name: "storage conflict - no event",
			mockSetup: func(s *ports.MockUserStorage, p *ports.MockUserEventPublisher) {
				s.On("CreateUser", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, storage, publisher := newTestUseCase()
			tt.mockSetup(storage, publisher)

			user, err := uc.CreateUser(context.Background(), domain.CreateUserInput{
				Username:  "alice",
				Email:     "a@x.com",
				CreatedAt: mo.None[domain.Timestamp](),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUser, user)
			}
			storage.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestUserUseCase_ListUsers_DoesNotPublish(t *testing.T) {
	uc, storage, publisher := newTestUseCase()
	filter := domain.UserFilter{ID: mo.Some(int64(5))}
	storage.On("ListUsers", mock.Anything, filter).Return([]domain.User{{ID: 5}}, nil)

	users, err := uc.ListUsers(context.Background(), filter)

	require.NoError(t, err)
	assert.Len(t, users, 1)
	publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
}

func TestUserUseCase_UpdateUser(t *testing.T) {
	uc, storage, publisher := newTestUseCase()
	input := domain.UpdateUserInput{ID: 3, Username: "carol", Email: "c@x.com"}
	storage.On("UpdateUser", mock.Anything, input).
		Return(&domain.User{ID: 3, Username: "carol", Email: "c@x.com"}, nil)
	publisher.On("PublishUserEvent", mock.Anything, eventFor(payloads.UserUpdated, 3)).Return(nil)

	user, err := uc.UpdateUser(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	publisher.AssertExpectations(t)
}

func TestUserUseCase_UpdateUser_NotFound(t *testing.T) {
	uc, storage, publisher := newTestUseCase()
	input := domain.UpdateUserInput{ID: 404, Username: "x", Email: "y"}
	storage.On("UpdateUser", mock.Anything, input).Return(nil, domain.ErrUserNotFound)

	_, err := uc.UpdateUser(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
}

func TestUserUseCase_DeleteUser(t *testing.T) {
	uc, storage, publisher := newTestUseCase()
	storage.On("DeleteUser", mock.Anything, int64(9)).
		Return(&domain.User{ID: 9, Username: "dan", Email: "d@x.com"}, nil).Once()
	storage.On("DeleteUser", mock.Anything, int64(9)).
		Return(nil, domain.ErrUserNotFound).Once()
	publisher.On("PublishUserEvent", mock.Anything, eventFor(payloads.UserDeleted, 9)).Return(nil).Once()

	user, err := uc.DeleteUser(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "dan", user.Username)

	_, err = uc.DeleteUser(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	publisher.AssertNumberOfCalls(t, "PublishUserEvent", 1)
}

func TestUserUseCase_PublishSurvivesCancelledRequest(t *testing.T) {
	uc, storage, publisher := newTestUseCase()

	ctx, cancel := context.WithCancel(context.Background())
	storage.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&domain.User{ID: 4, Username: "erin", Email: "e@x.com"}, nil)
	publisher.On("PublishUserEvent", mock.MatchedBy(func(c context.Context) bool {
		return c.Err() == nil
	}), eventFor(payloads.UserCreated, 4)).Return(nil)

	_, err := uc.CreateUser(ctx, domain.CreateUserInput{Username: "erin", Email: "e@x.com"})
	require.NoError(t, err)

	require.Error(t, ctx.Err())
	publisher.AssertExpectations(t)
}
