package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/anatomyflash/internal/mastery"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/services"
)

// MockProgressService is a mock implementation of services.ProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Initialize(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressService) Load(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressService) RecordQuiz(ctx context.Context, userID string, result services.QuizResult) (models.MasteryLevel, error) {
	args := m.Called(ctx, userID, result)
	return args.Get(0).(models.MasteryLevel), args.Error(1)
}

func (m *MockProgressService) RecordView(ctx context.Context, userID string, topic models.Topic) error {
	args := m.Called(ctx, userID, topic)
	return args.Error(0)
}

func (m *MockProgressService) Overview(ctx context.Context, userID string) (*services.ProgressOverview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProgressOverview), args.Error(1)
}

func (m *MockProgressService) History(ctx context.Context, filter models.HistoryFilter) (*services.HistoryReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.HistoryReport), args.Error(1)
}

func (m *MockProgressService) Recommendations(ctx context.Context, userID string) (*mastery.Recommendation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mastery.Recommendation), args.Error(1)
}

func (m *MockProgressService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
