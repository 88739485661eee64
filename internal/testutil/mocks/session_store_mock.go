package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/anatomyflash/internal/quiz"
)

// MockSessionStore is a mock implementation of sessions.Store
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, userID string) (*quiz.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quiz.Session), args.Error(1)
}

func (m *MockSessionStore) Save(ctx context.Context, userID string, s quiz.Session) error {
	args := m.Called(ctx, userID, s)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
