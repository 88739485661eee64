package mastery

import (
	"github.com/vytor/anatomyflash/internal/models"
)

type TopicLevel struct {
	Topic models.Topic        `json:"topic"`
	Level models.MasteryLevel `json:"level"`
	Name  string              `json:"name"`
}

// Summary is the progress overview shown on the dashboard.
type Summary struct {
	Levels         []TopicLevel `json:"levels"`
	OverallPercent float64      `json:"overall_percent"`
	QuizzesTaken   int          `json:"quizzes_taken"`
	SectionViews   int          `json:"section_views"`
}

// Summarize reports every known topic in display order. The overall percent
// is the sum of levels over the maximum reachable.
func Summarize(p *models.UserProgress) Summary {
	s := Summary{
		Levels:       make([]TopicLevel, 0, len(models.Topics)),
		QuizzesTaken: len(p.QuizHistory),
	}
	total := 0
	for _, t := range models.Topics {
		lvl := p.MasteryLevels[t]
		total += int(lvl)
		s.Levels = append(s.Levels, TopicLevel{Topic: t, Level: lvl, Name: lvl.String()})
		s.SectionViews += len(p.ViewedSections[t])
	}
	s.OverallPercent = float64(total) / float64(len(models.Topics)*int(models.MaxMastery)) * 100
	return s
}

// Improvement is the change in ratio between the first and last attempt of a
// topic, or of all attempts when topic is empty. ok is false with fewer than
// two attempts.
func Improvement(history []models.QuizAttempt, topic models.Topic) (delta float64, ok bool) {
	var first, last *models.QuizAttempt
	count := 0
	for i := range history {
		if topic != "" && history[i].Category != topic {
			continue
		}
		if first == nil {
			first = &history[i]
		}
		last = &history[i]
		count++
	}
	if count < 2 {
		return 0, false
	}
	return last.Ratio() - first.Ratio(), true
}

// Recommendation points the user at the topic that needs the most work.
type Recommendation struct {
	// Available is false until the user has taken at least one quiz.
	Available      bool                `json:"available"`
	WeakestTopic   models.Topic        `json:"weakest_topic,omitempty"`
	WeakestLevel   models.MasteryLevel `json:"weakest_level"`
	NotStarted     []models.Topic      `json:"not_started,omitempty"`
	RecentAverage  float64             `json:"recent_average"`
	NextDifficulty models.Difficulty   `json:"next_difficulty,omitempty"`
	Strategy       models.Difficulty   `json:"strategy,omitempty"`
}

const recentAttempts = 3

// Recommend picks the weakest topic (ties by display order), its recent
// average over the last three attempts and the next quiz difficulty.
func Recommend(p *models.UserProgress) Recommendation {
	if len(p.QuizHistory) == 0 {
		return Recommendation{}
	}

	rec := Recommendation{Available: true, WeakestLevel: models.MaxMastery + 1}
	total := 0
	for _, t := range models.Topics {
		lvl := p.MasteryLevels[t]
		total += int(lvl)
		if lvl < rec.WeakestLevel {
			rec.WeakestTopic, rec.WeakestLevel = t, lvl
		}
		if lvl == models.MasteryNotStarted {
			rec.NotStarted = append(rec.NotStarted, t)
		}
	}

	rec.RecentAverage = meanRatio(lastOf(p.QuizHistory, rec.WeakestTopic, recentAttempts))
	rec.NextDifficulty = nextDifficulty(rec.WeakestLevel)

	overall := float64(total) / float64(len(models.Topics))
	switch {
	case overall < 1:
		rec.Strategy = models.DifficultyBeginner
	case overall < 2:
		rec.Strategy = models.DifficultyIntermediate
	default:
		rec.Strategy = models.DifficultyAdvanced
	}
	return rec
}

func nextDifficulty(level models.MasteryLevel) models.Difficulty {
	switch {
	case level <= models.MasteryNotStarted:
		return models.DifficultyBeginner
	case level == models.MasteryBeginner:
		return models.DifficultyIntermediate
	default:
		return models.DifficultyAdvanced
	}
}
