// Package jsonfile stores each user's progress as one JSON document on disk,
// <dir>/<user id>.json. Writes go to a temporary file that replaces the
// record with a rename, so readers never see a partial document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/vytor/anatomyflash/internal/keylock"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
)

var validUserID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

type progressRepository struct {
	dir   string
	locks keylock.Striped
}

// NewProgressRepository creates the directory if needed and returns a
// file-backed ProgressRepository.
func NewProgressRepository(dir string) (repository.ProgressRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &progressRepository{dir: dir}, nil
}

func (r *progressRepository) lock(userID string) func() {
	return r.locks.Lock(userID)
}

func (r *progressRepository) path(userID string) (string, error) {
	if !validUserID.MatchString(userID) {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	return filepath.Join(r.dir, userID+".json"), nil
}

func (r *progressRepository) read(userID string) (*models.UserProgress, error) {
	path, err := r.path(userID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc progressDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc.toModel(userID), nil
}

func (r *progressRepository) write(p *models.UserProgress) error {
	path, err := r.path(p.UserID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(toDoc(p), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "."+p.UserID+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_file")
	log.Debug("reading progress: user_id=%s", userID)

	unlock := r.lock(userID)
	defer unlock()

	p, err := r.read(userID)
	if err != nil {
		log.Error("failed to read progress: %v", err)
	}
	return p, err
}

func (r *progressRepository) Create(ctx context.Context, p *models.UserProgress) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_file")
	log.Debug("creating progress: user_id=%s", p.UserID)

	unlock := r.lock(p.UserID)
	defer unlock()

	existing, err := r.read(p.UserID)
	if err != nil {
		log.Error("failed to read progress: %v", err)
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := r.write(p); err != nil {
		log.Error("failed to write progress: %v", err)
		return false, err
	}
	return true, nil
}

// update applies fn to the stored record, creating it first when missing.
func (r *progressRepository) update(ctx context.Context, userID string, fn func(*models.UserProgress)) error {
	log := logger.FromContext(ctx).WithPrefix("progress_file")

	unlock := r.lock(userID)
	defer unlock()

	p, err := r.read(userID)
	if err != nil {
		log.Error("failed to read progress: %v", err)
		return err
	}
	if p == nil {
		p = models.NewUserProgress(userID)
	}
	fn(p)
	if err := r.write(p); err != nil {
		log.Error("failed to write progress: %v", err)
		return err
	}
	return nil
}

func (r *progressRepository) AppendQuizAttempt(ctx context.Context, userID string, attempt models.QuizAttempt, level models.MasteryLevel) error {
	logger.FromContext(ctx).WithPrefix("progress_file").Debug("appending quiz attempt: user_id=%s, category=%s", userID, attempt.Category)
	return r.update(ctx, userID, func(p *models.UserProgress) {
		p.QuizHistory = append(p.QuizHistory, attempt)
		p.MasteryLevels[attempt.Category] = level
	})
}

func (r *progressRepository) AppendSectionView(ctx context.Context, userID string, topic models.Topic, at time.Time) error {
	logger.FromContext(ctx).WithPrefix("progress_file").Debug("appending section view: user_id=%s, topic=%s", userID, topic)
	return r.update(ctx, userID, func(p *models.UserProgress) {
		p.ViewedSections[topic] = append(p.ViewedSections[topic], at)
	})
}

func (r *progressRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.QuizAttempt, error) {
	p, err := r.Get(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}
	out := []models.QuizAttempt{}
	if p == nil {
		return out, nil
	}

	limit, offset := filter.Page()
	skipped := 0
	for i := len(p.QuizHistory) - 1; i >= 0 && len(out) < limit; i-- {
		a := p.QuizHistory[i]
		if !filter.Matches(a) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *progressRepository) Ping(ctx context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.dir)
	}
	return nil
}
