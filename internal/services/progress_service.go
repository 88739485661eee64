package services

import (
	"context"
	"slices"
	"time"

	"github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/mastery"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
)

// ProgressService handles per-user progress tracking and mastery
type ProgressService interface {
	Initialize(ctx context.Context, userID string) (*models.UserProgress, error)
	// Load never reports a missing record; it initializes one instead.
	Load(ctx context.Context, userID string) (*models.UserProgress, error)
	RecordQuiz(ctx context.Context, userID string, result QuizResult) (models.MasteryLevel, error)
	RecordView(ctx context.Context, userID string, topic models.Topic) error
	Overview(ctx context.Context, userID string) (*ProgressOverview, error)
	History(ctx context.Context, filter models.HistoryFilter) (*HistoryReport, error)
	Recommendations(ctx context.Context, userID string) (*mastery.Recommendation, error)
	Ready(ctx context.Context) error
}

// QuizResult is what a submitted quiz contributes to the history.
type QuizResult struct {
	Category      models.Topic
	Difficulty    models.Difficulty
	Score         int
	Total         int
	QuestionTypes []models.QuestionType
}

type ProgressOverview struct {
	Progress *models.UserProgress `json:"progress"`
	Summary  mastery.Summary      `json:"summary"`
}

type HistoryReport struct {
	Attempts []models.QuizAttempt `json:"attempts"`
	// Improvement is nil with fewer than two attempts in the category.
	Improvement *float64 `json:"improvement"`
}

type progressService struct {
	repo repository.ProgressRepository
	now  func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(repo repository.ProgressRepository) ProgressService {
	return &progressService{repo: repo, now: time.Now}
}

func validateUserID(userID string) error {
	if userID == "" {
		return errors.NewValidationError("user", "identity is required")
	}
	return nil
}

func (s *progressService) Initialize(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("initializing progress: user_id=%s", userID)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	fresh := models.NewUserProgress(userID)
	created, err := s.repo.Create(ctx, fresh)
	if err != nil {
		log.Error("failed to create progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if created {
		log.Info("progress record created: user_id=%s", userID)
		return fresh, nil
	}

	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing == nil {
		return fresh, nil
	}
	return existing, nil
}

func (s *progressService) Load(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading progress: user_id=%s", userID)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return s.Initialize(ctx, userID)
	}
	return p, nil
}

func (s *progressService) RecordQuiz(ctx context.Context, userID string, result QuizResult) (models.MasteryLevel, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording quiz: user_id=%s, category=%s, difficulty=%s, score=%d/%d",
		userID, result.Category, result.Difficulty, result.Score, result.Total)

	if !result.Category.Valid() {
		return 0, errors.NewValidationError("category", "unknown topic")
	}
	if !result.Difficulty.Valid() {
		return 0, errors.NewValidationError("difficulty", "unknown difficulty")
	}
	if result.Total < 0 || result.Score < 0 || result.Score > result.Total {
		return 0, errors.NewValidationError("score", "must be between 0 and total")
	}

	p, err := s.Load(ctx, userID)
	if err != nil {
		return 0, err
	}

	attempt := models.QuizAttempt{
		Timestamp:     s.now().UTC(),
		Category:      result.Category,
		Difficulty:    result.Difficulty,
		Score:         result.Score,
		Total:         result.Total,
		QuestionTypes: slices.Clone(result.QuestionTypes),
	}
	history := append(slices.Clone(p.QuizHistory), attempt)
	level := mastery.Level(history, result.Category, p.MasteryLevels[result.Category])

	if err := s.repo.AppendQuizAttempt(ctx, userID, attempt, level); err != nil {
		log.Error("failed to append quiz attempt: %v", err)
		return 0, errors.NewInternalError(err)
	}

	if level != p.MasteryLevels[result.Category] {
		log.Info("mastery changed: user_id=%s, topic=%s, level=%s", userID, result.Category, level)
	}
	return level, nil
}

func (s *progressService) RecordView(ctx context.Context, userID string, topic models.Topic) error {
	log := logger.FromContext(ctx)
	log.Debug("recording section view: user_id=%s, topic=%s", userID, topic)

	if err := validateUserID(userID); err != nil {
		return err
	}
	if !topic.Valid() {
		return errors.NewValidationError("topic", "unknown topic")
	}

	if err := s.repo.AppendSectionView(ctx, userID, topic, s.now().UTC()); err != nil {
		log.Error("failed to append section view: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *progressService) Overview(ctx context.Context, userID string) (*ProgressOverview, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressOverview{Progress: p, Summary: mastery.Summarize(p)}, nil
}

func (s *progressService) History(ctx context.Context, filter models.HistoryFilter) (*HistoryReport, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing history: user_id=%s, category=%s, difficulty=%s", filter.UserID, filter.Category, filter.Difficulty)

	if err := validateUserID(filter.UserID); err != nil {
		return nil, err
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, errors.NewValidationError("category", "unknown topic")
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, errors.NewValidationError("difficulty", "unknown difficulty")
	}

	attempts, err := s.repo.History(ctx, filter)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, errors.NewInternalError(err)
	}

	p, err := s.Load(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}

	report := &HistoryReport{Attempts: attempts}
	if delta, ok := mastery.Improvement(p.QuizHistory, filter.Category); ok {
		report.Improvement = &delta
	}
	return report, nil
}

func (s *progressService) Recommendations(ctx context.Context, userID string) (*mastery.Recommendation, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := mastery.Recommend(p)
	return &rec, nil
}

func (s *progressService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
