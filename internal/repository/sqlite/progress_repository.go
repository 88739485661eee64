package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a ProgressRepository backed by SQLite.
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%s", userID)

	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		log.Debug("no progress record: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}

	p := &models.UserProgress{
		UserID:         userID,
		ViewedSections: map[models.Topic][]time.Time{},
		MasteryLevels:  map[models.Topic]models.MasteryLevel{},
	}

	p.QuizHistory, err = r.queryHistory(ctx, sqlBuilder.
		Select("taken_at", "category", "difficulty", "score", "total", "question_types").
		From("quiz_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id ASC"))
	if err != nil {
		log.Error("failed to load quiz history: %v", err)
		return nil, err
	}

	if err := r.loadViews(ctx, userID, p); err != nil {
		log.Error("failed to load section views: %v", err)
		return nil, err
	}
	if err := r.loadMastery(ctx, userID, p); err != nil {
		log.Error("failed to load mastery levels: %v", err)
		return nil, err
	}

	p.FillTopics()
	log.Debug("progress loaded: user_id=%s, attempts=%d", userID, len(p.QuizHistory))
	return p, nil
}

func (r *progressRepository) loadViews(ctx context.Context, userID string, p *models.UserProgress) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT topic, viewed_at
FROM section_views
WHERE user_id = ?
ORDER BY id ASC
`, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var topic string
		var at time.Time
		if err := rows.Scan(&topic, &at); err != nil {
			return err
		}
		t := models.Topic(topic)
		p.ViewedSections[t] = append(p.ViewedSections[t], at)
	}
	return rows.Err()
}

func (r *progressRepository) loadMastery(ctx context.Context, userID string, p *models.UserProgress) error {
	rows, err := r.db.QueryContext(ctx, `SELECT topic, level FROM mastery_levels WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var topic string
		var level int
		if err := rows.Scan(&topic, &level); err != nil {
			return err
		}
		p.MasteryLevels[models.Topic(topic)] = models.MasteryLevel(level)
	}
	return rows.Err()
}

func (r *progressRepository) Create(ctx context.Context, p *models.UserProgress) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("creating progress: user_id=%s", p.UserID)

	created := false
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO users (id) VALUES (?)`, p.UserID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		created = true

		for _, t := range models.Topics {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO mastery_levels (user_id, topic, level) VALUES (?, ?, ?)
`, p.UserID, string(t), int(p.MasteryLevels[t])); err != nil {
				return err
			}
		}
		for _, a := range p.QuizHistory {
			if err := insertAttempt(ctx, tx, p.UserID, a); err != nil {
				return err
			}
		}
		for _, t := range models.Topics {
			for _, at := range p.ViewedSections[t] {
				if err := insertView(ctx, tx, p.UserID, t, at); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create progress: %v", err)
		return false, err
	}
	log.Debug("progress create finished: user_id=%s, created=%t", p.UserID, created)
	return created, nil
}

// ensureUser creates the user row and zero mastery rows when missing.
func ensureUser(ctx context.Context, tx *sql.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO users (id) VALUES (?)`, userID); err != nil {
		return err
	}
	for _, t := range models.Topics {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO mastery_levels (user_id, topic, level) VALUES (?, ?, 0)
`, userID, string(t)); err != nil {
			return err
		}
	}
	return nil
}

func insertAttempt(ctx context.Context, tx *sql.Tx, userID string, a models.QuizAttempt) error {
	types := a.QuestionTypes
	if types == nil {
		types = []models.QuestionType{}
	}
	typesJSON, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("encode question types: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO quiz_history (user_id, taken_at, category, difficulty, score, total, question_types)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, userID, a.Timestamp.UTC(), string(a.Category), string(a.Difficulty), a.Score, a.Total, string(typesJSON))
	return err
}

func insertView(ctx context.Context, tx *sql.Tx, userID string, topic models.Topic, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO section_views (user_id, topic, viewed_at) VALUES (?, ?, ?)
`, userID, string(topic), at.UTC())
	return err
}

func (r *progressRepository) AppendQuizAttempt(ctx context.Context, userID string, attempt models.QuizAttempt, level models.MasteryLevel) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("appending quiz attempt: user_id=%s, category=%s, score=%d/%d, level=%d",
		userID, attempt.Category, attempt.Score, attempt.Total, level)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := insertAttempt(ctx, tx, userID, attempt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO mastery_levels (user_id, topic, level, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, topic) DO UPDATE SET level = excluded.level, updated_at = excluded.updated_at
`, userID, string(attempt.Category), int(level), time.Now().UTC())
		return err
	})
	if err != nil {
		log.Error("failed to append quiz attempt: %v", err)
	}
	return err
}

func (r *progressRepository) AppendSectionView(ctx context.Context, userID string, topic models.Topic, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("appending section view: user_id=%s, topic=%s", userID, topic)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}
		return insertView(ctx, tx, userID, topic, at)
	})
	if err != nil {
		log.Error("failed to append section view: %v", err)
	}
	return err
}

func (r *progressRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing history with filter: user_id=%s, category=%s, difficulty=%s",
		filter.UserID, filter.Category, filter.Difficulty)

	query := sqlBuilder.
		Select("taken_at", "category", "difficulty", "score", "total", "question_types").
		From("quiz_history").
		Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": string(filter.Category)})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}

	limit, offset := filter.Page()
	query = query.OrderBy("id DESC").Limit(uint64(limit)).Offset(uint64(offset))

	attempts, err := r.queryHistory(ctx, query)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, err
	}
	log.Debug("found %d attempts", len(attempts))
	return attempts, nil
}

func (r *progressRepository) queryHistory(ctx context.Context, query squirrel.SelectBuilder) ([]models.QuizAttempt, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		var a models.QuizAttempt
		var category, difficulty, types string
		if err := rows.Scan(&a.Timestamp, &category, &difficulty, &a.Score, &a.Total, &types); err != nil {
			return nil, err
		}
		a.Category = models.Topic(category)
		a.Difficulty = models.Difficulty(difficulty)
		if err := json.Unmarshal([]byte(types), &a.QuestionTypes); err != nil {
			return nil, fmt.Errorf("decode question types: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *progressRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
