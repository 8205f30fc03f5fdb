package ports

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// MockUserStorage is a mock implementation of the UserStorage interface
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStorage) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserStorage) UpdateUser(ctx context.Context, input domain.UpdateUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStorage) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockUserEventPublisher is a mock implementation of the UserEventPublisher interface
type MockUserEventPublisher struct {
	mock.Mock
}

func (m *MockUserEventPublisher) PublishUserEvent(ctx context.Context, event payloads.UserEventPayload) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockUserEventConsumer is a mock implementation of the UserEventConsumer interface
type MockUserEventConsumer struct {
	mock.Mock
}

func (m *MockUserEventConsumer) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}
