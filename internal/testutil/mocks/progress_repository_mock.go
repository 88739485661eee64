package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/anatomyflash/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) Create(ctx context.Context, p *models.UserProgress) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) AppendQuizAttempt(ctx context.Context, userID string, attempt models.QuizAttempt, level models.MasteryLevel) error {
	args := m.Called(ctx, userID, attempt, level)
	return args.Error(0)
}

func (m *MockProgressRepository) AppendSectionView(ctx context.Context, userID string, topic models.Topic, at time.Time) error {
	args := m.Called(ctx, userID, topic, at)
	return args.Error(0)
}

func (m *MockProgressRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.QuizAttempt, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizAttempt), args.Error(1)
}

func (m *MockProgressRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
