package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository/sqlite"
	"github.com/vytor/anatomyflash/internal/services"
	"github.com/vytor/anatomyflash/internal/testutil"
	"github.com/vytor/anatomyflash/internal/testutil/mocks"
)

func requireAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, stderrors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestProgressService_LoadExisting(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	existing := models.NewUserProgress("u1")
	existing.MasteryLevels[models.TopicDigestive] = models.MasteryExpert
	repo.On("Get", mock.Anything, "u1").Return(existing, nil)

	p, err := services.NewProgressService(repo).Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Same(t, existing, p)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProgressService_LoadSelfHeals(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	repo.On("Get", mock.Anything, "new-user").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.UserProgress) bool {
		return p.UserID == "new-user" && len(p.QuizHistory) == 0 && len(p.MasteryLevels) == len(models.Topics)
	})).Return(true, nil)

	p, err := services.NewProgressService(repo).Load(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, "new-user", p.UserID)
	for _, topic := range models.Topics {
		assert.Equal(t, models.MasteryNotStarted, p.MasteryLevels[topic])
	}
	repo.AssertExpectations(t)
}

func TestProgressService_InitializeNeverOverwrites(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	existing := models.NewUserProgress("u1")
	existing.QuizHistory = []models.QuizAttempt{{Category: models.TopicLymphatic, Score: 3, Total: 5}}
	repo.On("Create", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Get", mock.Anything, "u1").Return(existing, nil)

	p, err := services.NewProgressService(repo).Initialize(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, p.QuizHistory, 1, "existing history is kept")
}

func TestProgressService_LoadRepositoryFailure(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	repo.On("Get", mock.Anything, "u1").Return(nil, stderrors.New("disk on fire"))

	_, err := services.NewProgressService(repo).Load(context.Background(), "u1")
	requireAppError(t, err, apperrors.ErrCodeInternal)
}

func TestProgressService_RequiresIdentity(t *testing.T) {
	svc := services.NewProgressService(&mocks.MockProgressRepository{})

	_, err := svc.Load(context.Background(), "")
	requireAppError(t, err, apperrors.ErrCodeValidation)
}

func TestProgressService_RecordViewUnknownTopic(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	svc := services.NewProgressService(repo)

	err := svc.RecordView(context.Background(), "u1", "skeletal")
	requireAppError(t, err, apperrors.ErrCodeValidation)
	repo.AssertNotCalled(t, "AppendSectionView", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressService_RecordViewAppends(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	repo.On("AppendSectionView", mock.Anything, "u1", models.TopicRespiratory, mock.AnythingOfType("time.Time")).Return(nil)

	err := services.NewProgressService(repo).RecordView(context.Background(), "u1", models.TopicRespiratory)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProgressService_RecordQuizValidation(t *testing.T) {
	svc := services.NewProgressService(&mocks.MockProgressRepository{})
	ctx := context.Background()

	tests := []struct {
		name   string
		result services.QuizResult
	}{
		{"unknown category", services.QuizResult{Category: "skeletal", Difficulty: models.DifficultyBeginner, Score: 1, Total: 1}},
		{"unknown difficulty", services.QuizResult{Category: models.TopicDigestive, Difficulty: "expert", Score: 1, Total: 1}},
		{"score above total", services.QuizResult{Category: models.TopicDigestive, Difficulty: models.DifficultyBeginner, Score: 2, Total: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordQuiz(ctx, "u1", tt.result)
			requireAppError(t, err, apperrors.ErrCodeValidation)
		})
	}
}

func TestProgressService_RecordQuizRepositoryFailure(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	repo.On("Get", mock.Anything, "u1").Return(models.NewUserProgress("u1"), nil)
	repo.On("AppendQuizAttempt", mock.Anything, "u1", mock.Anything, models.MasteryNotStarted).Return(stderrors.New("locked"))

	_, err := services.NewProgressService(repo).RecordQuiz(context.Background(), "u1", services.QuizResult{
		Category: models.TopicDigestive, Difficulty: models.DifficultyBeginner, Score: 1, Total: 2,
	})
	requireAppError(t, err, apperrors.ErrCodeInternal)
}

// ProgressServiceSuite exercises the service against a real SQLite repository.
type ProgressServiceSuite struct {
	suite.Suite
	svc services.ProgressService
	ctx context.Context
}

func (s *ProgressServiceSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.T().Cleanup(func() { testutil.MustClose(s.T(), db) })
	s.svc = services.NewProgressService(sqlite.NewProgressRepository(db))
	s.ctx = context.Background()
}

func (s *ProgressServiceSuite) record(topic models.Topic, score, total int) models.MasteryLevel {
	level, err := s.svc.RecordQuiz(s.ctx, "u1", services.QuizResult{
		Category:      topic,
		Difficulty:    models.DifficultyIntermediate,
		Score:         score,
		Total:         total,
		QuestionTypes: []models.QuestionType{models.QuestionMultipleChoice},
	})
	s.Require().NoError(err)
	return level
}

func (s *ProgressServiceSuite) TestLoadIsIdempotent() {
	first, err := s.svc.Load(s.ctx, "u1")
	s.Require().NoError(err)
	second, err := s.svc.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(first, second)
}

func (s *ProgressServiceSuite) TestDigestiveBoundaryScenario() {
	s.Assert().Equal(models.MasteryNotStarted, s.record(models.TopicDigestive, 9, 10))
	s.Assert().Equal(models.MasteryNotStarted, s.record(models.TopicDigestive, 8, 10), "two entries leave mastery unchanged")
	s.Assert().Equal(models.MasteryIntermediate, s.record(models.TopicDigestive, 10, 10), "mean 0.9 is not above 0.9")

	p, err := s.svc.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(models.MasteryIntermediate, p.MasteryLevels[models.TopicDigestive])
	s.Assert().Len(p.QuizHistory, 3)
	s.Assert().Equal(models.MasteryNotStarted, p.MasteryLevels[models.TopicLymphatic])
}

func (s *ProgressServiceSuite) TestMasteryThresholds() {
	for i := 0; i < 3; i++ {
		s.record(models.TopicLymphatic, 1, 1)
		s.record(models.TopicRespiratory, 1, 2)
	}

	p, err := s.svc.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(models.MasteryExpert, p.MasteryLevels[models.TopicLymphatic])
	s.Assert().Equal(models.MasteryBeginner, p.MasteryLevels[models.TopicRespiratory])
}

func (s *ProgressServiceSuite) TestViewDoesNotAffectMastery() {
	s.Require().NoError(s.svc.RecordView(s.ctx, "u1", models.TopicLymphatic))
	s.Require().NoError(s.svc.RecordView(s.ctx, "u1", models.TopicLymphatic))

	overview, err := s.svc.Overview(s.ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Len(overview.Progress.ViewedSections[models.TopicLymphatic], 2)
	s.Assert().Equal(2, overview.Summary.SectionViews)
	s.Assert().Equal(models.MasteryNotStarted, overview.Progress.MasteryLevels[models.TopicLymphatic])
}

func (s *ProgressServiceSuite) TestHistoryAndRecommendations() {
	s.record(models.TopicRespiratory, 5, 10)
	s.record(models.TopicRespiratory, 8, 10)
	s.record(models.TopicDigestive, 2, 10)

	report, err := s.svc.History(s.ctx, models.HistoryFilter{UserID: "u1", Category: models.TopicRespiratory})
	s.Require().NoError(err)
	s.Assert().Len(report.Attempts, 2)
	s.Assert().Equal(8, report.Attempts[0].Score, "newest first")
	s.Require().NotNil(report.Improvement)
	s.Assert().InDelta(0.3, *report.Improvement, 1e-9)

	single, err := s.svc.History(s.ctx, models.HistoryFilter{UserID: "u1", Category: models.TopicDigestive})
	s.Require().NoError(err)
	s.Assert().Nil(single.Improvement)

	_, err = s.svc.History(s.ctx, models.HistoryFilter{UserID: "u1", Category: "skeletal"})
	s.Assert().Error(err)

	rec, err := s.svc.Recommendations(s.ctx, "u1")
	s.Require().NoError(err)
	s.Assert().True(rec.Available)
	s.Assert().Equal(models.TopicLymphatic, rec.WeakestTopic)
}

func (s *ProgressServiceSuite) TestReady() {
	s.Assert().NoError(s.svc.Ready(s.ctx))
}

func TestProgressServiceSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceSuite))
}
