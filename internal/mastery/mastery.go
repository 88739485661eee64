// Package mastery derives topic mastery and study advice from quiz history.
package mastery

import (
	"github.com/vytor/anatomyflash/internal/models"
)

const (
	// Window is how many recent attempts of a topic feed the mastery level.
	Window = 5
	// MinSample is the fewest attempts needed before the level changes.
	MinSample = 3

	expertRatio       = 0.9
	intermediateRatio = 0.7
)

// Level computes the mastery of topic from the whole history, newest last.
// With fewer than MinSample attempts for the topic current is returned.
func Level(history []models.QuizAttempt, topic models.Topic, current models.MasteryLevel) models.MasteryLevel {
	recent := lastOf(history, topic, Window)
	if len(recent) < MinSample {
		return current
	}

	avg := meanRatio(recent)
	switch {
	case avg > expertRatio:
		return models.MasteryExpert
	case avg > intermediateRatio:
		return models.MasteryIntermediate
	default:
		return models.MasteryBeginner
	}
}

// lastOf returns up to n of the most recent attempts for topic, oldest first.
// An empty topic matches every attempt.
func lastOf(history []models.QuizAttempt, topic models.Topic, n int) []models.QuizAttempt {
	var out []models.QuizAttempt
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if topic == "" || history[i].Category == topic {
			out = append(out, history[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func meanRatio(attempts []models.QuizAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		sum += a.Ratio()
	}
	return sum / float64(len(attempts))
}
