package quiz

import "github.com/vytor/anatomyflash/internal/models"

// Result is the raw score of one quiz.
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Score counts the questions answered correctly. Missing responses count as
// incorrect, so Score(qs, nil).Score is 0.
func Score(questions []Question, responses Responses) Result {
	res := Result{Total: len(questions)}
	for _, q := range questions {
		if q.Grade(responses[q.Meta().ID]).Correct {
			res.Score++
		}
	}
	return res
}

// DominantCategory returns the most frequent category among questions.
// Ties go to the category encountered first; an empty set returns "".
func DominantCategory(questions []Question) models.Topic {
	counts := make(map[models.Topic]int)
	var order []models.Topic
	for _, q := range questions {
		c := q.Meta().Category
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	var best models.Topic
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
