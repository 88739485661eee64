package repository

import (
	"context"
	"time"

	"github.com/vytor/anatomyflash/internal/models"
)

// ProgressRepository handles per-user progress records. Every write is
// atomic for one user's record.
type ProgressRepository interface {
	// Get returns nil, nil when the user has no record yet.
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	// Create stores p unless a record for p.UserID already exists. It never
	// overwrites; created reports whether anything was written.
	Create(ctx context.Context, p *models.UserProgress) (created bool, err error)
	// AppendQuizAttempt appends to the history and stores the recomputed
	// mastery level of the attempt's category in the same write.
	AppendQuizAttempt(ctx context.Context, userID string, attempt models.QuizAttempt, level models.MasteryLevel) error
	AppendSectionView(ctx context.Context, userID string, topic models.Topic, at time.Time) error
	// History lists attempts newest first.
	History(ctx context.Context, filter models.HistoryFilter) ([]models.QuizAttempt, error)
	Ping(ctx context.Context) error
}
