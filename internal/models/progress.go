package models

import "time"

// QuizAttempt is one entry of a user's append-only quiz history.
type QuizAttempt struct {
	Timestamp     time.Time      `json:"timestamp"`
	Category      Topic          `json:"category"`
	Difficulty    Difficulty     `json:"difficulty"`
	Score         int            `json:"score"`
	Total         int            `json:"total"`
	QuestionTypes []QuestionType `json:"question_types"`
}

// Ratio returns score/total, or 0 for an empty quiz.
func (a QuizAttempt) Ratio() float64 {
	if a.Total <= 0 {
		return 0
	}
	return float64(a.Score) / float64(a.Total)
}

type UserProgress struct {
	UserID         string                 `json:"user_id"`
	QuizHistory    []QuizAttempt          `json:"quiz_history"`
	ViewedSections map[Topic][]time.Time  `json:"viewed_sections"`
	MasteryLevels  map[Topic]MasteryLevel `json:"mastery_levels"`
}

// NewUserProgress returns an empty record with an entry for every known topic.
func NewUserProgress(userID string) *UserProgress {
	p := &UserProgress{
		UserID:         userID,
		QuizHistory:    []QuizAttempt{},
		ViewedSections: make(map[Topic][]time.Time, len(Topics)),
		MasteryLevels:  make(map[Topic]MasteryLevel, len(Topics)),
	}
	p.FillTopics()
	return p
}

// FillTopics adds missing per-topic entries without touching existing ones.
func (p *UserProgress) FillTopics() {
	if p.QuizHistory == nil {
		p.QuizHistory = []QuizAttempt{}
	}
	if p.ViewedSections == nil {
		p.ViewedSections = make(map[Topic][]time.Time, len(Topics))
	}
	if p.MasteryLevels == nil {
		p.MasteryLevels = make(map[Topic]MasteryLevel, len(Topics))
	}
	for _, t := range Topics {
		if p.ViewedSections[t] == nil {
			p.ViewedSections[t] = []time.Time{}
		}
		if _, ok := p.MasteryLevels[t]; !ok {
			p.MasteryLevels[t] = MasteryNotStarted
		}
	}
}

// HistoryFilter narrows a quiz history listing. Zero values match everything.
type HistoryFilter struct {
	UserID     string
	Category   Topic
	Difficulty Difficulty
	Limit      int
	Offset     int
}

// DefaultHistoryLimit caps history listings that do not set a limit.
const DefaultHistoryLimit = 100

// Page returns the effective limit and offset.
func (f HistoryFilter) Page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Matches reports whether an attempt passes the category and difficulty filters.
func (f HistoryFilter) Matches(a QuizAttempt) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && a.Difficulty != f.Difficulty {
		return false
	}
	return true
}
