package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vytor/anatomyflash/internal/errors"
	"github.com/vytor/anatomyflash/internal/keylock"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/quiz"
	"github.com/vytor/anatomyflash/internal/sessions"
)

// QuizService runs quiz sessions on behalf of users. Operations for one user
// are serialized; different users proceed in parallel.
type QuizService interface {
	Options() OptionsCatalog
	Current(ctx context.Context, userID string) (quiz.Session, error)
	Start(ctx context.Context, userID string, opts quiz.Options) (quiz.Session, error)
	Answer(ctx context.Context, userID, questionID string, r quiz.Response) (quiz.Session, error)
	Submit(ctx context.Context, userID string) (quiz.Session, error)
	Cancel(ctx context.Context, userID string) (quiz.Session, error)
	TakeAnother(ctx context.Context, userID string) (quiz.Session, error)
	ReturnHome(ctx context.Context, userID string) (quiz.Session, quiz.Navigation, error)
}

// OptionsCatalog describes the choices offered by the quiz form.
type OptionsCatalog struct {
	Topics        []models.Topic            `json:"topics"`
	Difficulties  []models.Difficulty       `json:"difficulties"`
	QuestionTypes []models.QuestionType     `json:"question_types"`
	MinCount      int                       `json:"min_count"`
	MaxCount      int                       `json:"max_count"`
	Defaults      quiz.Options              `json:"defaults"`
	Available     map[models.Difficulty]int `json:"available"`
}

type quizService struct {
	bank     *quiz.Bank
	sessions sessions.Store
	progress ProgressService
	rng      quiz.Rand

	locks keylock.Striped
}

// NewQuizService creates a new QuizService. A nil rng samples from the
// runtime-seeded global source.
func NewQuizService(bank *quiz.Bank, store sessions.Store, progress ProgressService, rng quiz.Rand) QuizService {
	if rng != nil {
		rng = &lockedRand{r: rng}
	}
	return &quizService{bank: bank, sessions: store, progress: progress, rng: rng}
}

type lockedRand struct {
	mu sync.Mutex
	r  quiz.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (s *quizService) lock(userID string) func() {
	return s.locks.Lock(userID)
}

func (s *quizService) Options() OptionsCatalog {
	available := make(map[models.Difficulty]int, len(models.Difficulties))
	for _, d := range models.Difficulties {
		available[d] = len(s.bank.Questions(d))
	}
	return OptionsCatalog{
		Topics:        append([]models.Topic{models.AnyTopic}, models.Topics...),
		Difficulties:  slices.Clone(models.Difficulties),
		QuestionTypes: slices.Clone(models.QuestionTypes),
		MinCount:      quiz.MinCount,
		MaxCount:      quiz.MaxCount,
		Defaults:      quiz.DefaultOptions(),
		Available:     available,
	}
}

// load returns the stored session or a fresh Configuring one.
func (s *quizService) load(ctx context.Context, userID string) (quiz.Session, error) {
	if err := validateUserID(userID); err != nil {
		return quiz.Session{}, err
	}
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load session: %v", err)
		return quiz.Session{}, errors.NewInternalError(err)
	}
	if sess == nil {
		return quiz.New(), nil
	}
	return *sess, nil
}

func (s *quizService) save(ctx context.Context, userID string, sess quiz.Session) error {
	if err := s.sessions.Save(ctx, userID, sess); err != nil {
		logger.FromContext(ctx).Error("failed to save session: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *quizService) Current(ctx context.Context, userID string) (quiz.Session, error) {
	unlock := s.lock(userID)
	defer unlock()
	return s.load(ctx, userID)
}

func (s *quizService) Start(ctx context.Context, userID string, opts quiz.Options) (quiz.Session, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting quiz: user_id=%s, category=%s, difficulty=%s, count=%d, types=%v",
		userID, opts.Category, opts.Difficulty, opts.Count, opts.Types)

	if opts.Count < quiz.MinCount || opts.Count > quiz.MaxCount {
		return quiz.Session{}, errors.NewValidationError("count", fmt.Sprintf("must be between %d and %d", quiz.MinCount, quiz.MaxCount))
	}

	unlock := s.lock(userID)
	defer unlock()

	current, err := s.load(ctx, userID)
	if err != nil {
		return quiz.Session{}, err
	}

	next, err := current.Start(s.bank, opts, s.rng)
	if err != nil {
		var insufficient *quiz.InsufficientQuestionsError
		if stderrors.As(err, &insufficient) {
			log.Info("not enough questions: user_id=%s, requested=%d, available=%d",
				userID, insufficient.Requested, insufficient.Available)
			// Remember the choice so the form keeps it.
			if saveErr := s.save(ctx, userID, next); saveErr != nil {
				return quiz.Session{}, saveErr
			}
			return next, mapQuizError(err)
		}
		return current, mapQuizError(err)
	}

	if err := s.save(ctx, userID, next); err != nil {
		return quiz.Session{}, err
	}
	log.Info("quiz started: user_id=%s, questions=%d", userID, len(next.Questions))
	return next, nil
}

func (s *quizService) Answer(ctx context.Context, userID, questionID string, r quiz.Response) (quiz.Session, error) {
	logger.FromContext(ctx).Debug("answering: user_id=%s, question_id=%s", userID, questionID)

	return s.transition(ctx, userID, func(cur quiz.Session) (quiz.Session, error) {
		return cur.Answer(questionID, r)
	})
}

func (s *quizService) Submit(ctx context.Context, userID string) (quiz.Session, error) {
	log := logger.FromContext(ctx)

	submitted, err := s.transition(ctx, userID, func(cur quiz.Session) (quiz.Session, error) {
		return cur.Submit()
	})
	if err != nil {
		return submitted, err
	}

	out := submitted.Outcome
	log.Info("quiz submitted: user_id=%s, score=%d/%d, category=%s", userID, out.Score, out.Total, out.Category)

	// The result is already stored; a progress failure must not undo it.
	_, err = s.progress.RecordQuiz(ctx, userID, QuizResult{
		Category:      out.Category,
		Difficulty:    out.Difficulty,
		Score:         out.Score,
		Total:         out.Total,
		QuestionTypes: submitted.QuestionTypes(),
	})
	if err != nil {
		log.Warn("failed to record quiz progress: user_id=%s, err=%v", userID, err)
	}
	return submitted, nil
}

func (s *quizService) Cancel(ctx context.Context, userID string) (quiz.Session, error) {
	logger.FromContext(ctx).Debug("cancelling quiz: user_id=%s", userID)

	return s.transition(ctx, userID, func(cur quiz.Session) (quiz.Session, error) {
		return cur.Cancel(), nil
	})
}

func (s *quizService) TakeAnother(ctx context.Context, userID string) (quiz.Session, error) {
	return s.transition(ctx, userID, func(cur quiz.Session) (quiz.Session, error) {
		return cur.TakeAnother()
	})
}

func (s *quizService) ReturnHome(ctx context.Context, userID string) (quiz.Session, quiz.Navigation, error) {
	var nav quiz.Navigation
	sess, err := s.transition(ctx, userID, func(cur quiz.Session) (quiz.Session, error) {
		next, n, err := cur.ReturnHome()
		nav = n
		return next, err
	})
	return sess, nav, err
}

// transition loads the user's session, applies fn and stores the result.
// On failure the stored session is left as it was.
func (s *quizService) transition(ctx context.Context, userID string, fn func(quiz.Session) (quiz.Session, error)) (quiz.Session, error) {
	unlock := s.lock(userID)
	defer unlock()

	current, err := s.load(ctx, userID)
	if err != nil {
		return quiz.Session{}, err
	}
	next, err := fn(current)
	if err != nil {
		return current, mapQuizError(err)
	}
	if err := s.save(ctx, userID, next); err != nil {
		return current, err
	}
	return next, nil
}

// mapQuizError converts session errors into AppErrors.
func mapQuizError(err error) error {
	var insufficient *quiz.InsufficientQuestionsError
	var optErr *quiz.OptionError
	switch {
	case stderrors.As(err, &insufficient):
		return errors.NewInsufficientQuestionsError(insufficient.Requested, insufficient.Available, err)
	case stderrors.As(err, &optErr):
		return errors.NewValidationError(optErr.Field, optErr.Reason)
	case stderrors.Is(err, quiz.ErrInvalidTransition):
		return errors.NewInvalidStateError("action not allowed in the current quiz state", err)
	case stderrors.Is(err, quiz.ErrUnknownQuestion):
		return errors.NewValidationError("question", "not part of the current quiz")
	default:
		return errors.NewInternalError(err)
	}
}
