package mastery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/anatomyflash/internal/mastery"
	"github.com/vytor/anatomyflash/internal/models"
)

func attempts(topic models.Topic, scores ...int) []models.QuizAttempt {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.QuizAttempt, 0, len(scores))
	for i, s := range scores {
		out = append(out, models.QuizAttempt{
			Timestamp:  start.Add(time.Duration(i) * time.Hour),
			Category:   topic,
			Difficulty: models.DifficultyBeginner,
			Score:      s,
			Total:      10,
		})
	}
	return out
}

func TestLevel_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		scores  []int
		current models.MasteryLevel
		want    models.MasteryLevel
	}{
		{"perfect", []int{10, 10, 10}, models.MasteryNotStarted, models.MasteryExpert},
		{"half", []int{5, 5, 5}, models.MasteryNotStarted, models.MasteryBeginner},
		{"eighty percent", []int{8, 8, 8}, models.MasteryNotStarted, models.MasteryIntermediate},
		{"mean exactly 0.9 is not expert", []int{9, 8, 10}, models.MasteryNotStarted, models.MasteryIntermediate},
		{"mean exactly 0.7 is beginner", []int{7, 7, 7}, models.MasteryExpert, models.MasteryBeginner},
		{"two entries keep level", []int{10, 10}, models.MasteryBeginner, models.MasteryBeginner},
		{"no entries keep level", nil, models.MasteryIntermediate, models.MasteryIntermediate},
		{"only last five count", []int{0, 0, 10, 10, 10, 10, 10}, models.MasteryNotStarted, models.MasteryExpert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := attempts(models.TopicDigestive, tt.scores...)
			got := mastery.Level(history, models.TopicDigestive, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_IgnoresOtherTopics(t *testing.T) {
	history := append(attempts(models.TopicLymphatic, 0, 0, 0), attempts(models.TopicDigestive, 10, 10)...)

	assert.Equal(t, models.MasteryNotStarted, mastery.Level(history, models.TopicDigestive, models.MasteryNotStarted),
		"lymphatic attempts must not count toward digestive")
	assert.Equal(t, models.MasteryBeginner, mastery.Level(history, models.TopicLymphatic, models.MasteryNotStarted))
}

func TestSummarize(t *testing.T) {
	p := models.NewUserProgress("u1")
	p.MasteryLevels[models.TopicLymphatic] = models.MasteryExpert
	p.MasteryLevels[models.TopicRespiratory] = models.MasteryIntermediate
	p.ViewedSections[models.TopicDigestive] = []time.Time{time.Now(), time.Now()}
	p.QuizHistory = attempts(models.TopicLymphatic, 10, 10, 10)

	s := mastery.Summarize(p)

	assert.Len(t, s.Levels, 3)
	assert.Equal(t, models.TopicLymphatic, s.Levels[0].Topic)
	assert.Equal(t, "Expert", s.Levels[0].Name)
	assert.Equal(t, "Not Started", s.Levels[2].Name)
	assert.InDelta(t, 55.555, s.OverallPercent, 0.01)
	assert.Equal(t, 3, s.QuizzesTaken)
	assert.Equal(t, 2, s.SectionViews)
}

func TestImprovement(t *testing.T) {
	history := append(attempts(models.TopicDigestive, 5, 7), attempts(models.TopicLymphatic, 9)...)

	delta, ok := mastery.Improvement(history, models.TopicDigestive)
	assert.True(t, ok)
	assert.InDelta(t, 0.2, delta, 1e-9)

	delta, ok = mastery.Improvement(history, "")
	assert.True(t, ok)
	assert.InDelta(t, 0.4, delta, 1e-9)

	_, ok = mastery.Improvement(history, models.TopicLymphatic)
	assert.False(t, ok, "a single attempt has no trend")
}

func TestRecommend(t *testing.T) {
	p := models.NewUserProgress("u1")
	assert.False(t, mastery.Recommend(p).Available, "no advice before the first quiz")

	p.QuizHistory = append(attempts(models.TopicRespiratory, 2, 4, 6, 8), attempts(models.TopicLymphatic, 10)...)
	p.MasteryLevels[models.TopicLymphatic] = models.MasteryExpert
	p.MasteryLevels[models.TopicRespiratory] = models.MasteryBeginner
	p.MasteryLevels[models.TopicDigestive] = models.MasteryIntermediate

	rec := mastery.Recommend(p)
	assert.True(t, rec.Available)
	assert.Equal(t, models.TopicRespiratory, rec.WeakestTopic)
	assert.Equal(t, models.MasteryBeginner, rec.WeakestLevel)
	assert.InDelta(t, 0.6, rec.RecentAverage, 1e-9, "mean of the last three respiratory attempts")
	assert.Equal(t, models.DifficultyIntermediate, rec.NextDifficulty)
	assert.Equal(t, models.DifficultyAdvanced, rec.Strategy)
	assert.Empty(t, rec.NotStarted)
}

func TestRecommend_TiesUseTopicOrder(t *testing.T) {
	p := models.NewUserProgress("u1")
	p.QuizHistory = attempts(models.TopicDigestive, 3)

	rec := mastery.Recommend(p)
	assert.Equal(t, models.TopicLymphatic, rec.WeakestTopic)
	assert.Equal(t, models.DifficultyBeginner, rec.NextDifficulty)
	assert.Equal(t, models.DifficultyBeginner, rec.Strategy)
	assert.Equal(t, models.Topics, rec.NotStarted)
	assert.Zero(t, rec.RecentAverage)
}
