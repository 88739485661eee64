package jsonfile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vytor/anatomyflash/internal/models"
)

// Layouts accepted when reading timestamps. Records written by earlier
// versions of the app carry ISO 8601 local times without a zone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// timestamp is written as RFC 3339 and read as RFC 3339 or zone-less
// ISO 8601. Zone-less values are taken as server local time.
type timestamp time.Time

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = timestamp(v)
		return nil
	}
	// Fractional seconds are accepted after the seconds field on parse.
	for _, layout := range localLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = timestamp(v)
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

type attemptDoc struct {
	Timestamp     timestamp             `json:"timestamp"`
	Category      models.Topic          `json:"category"`
	Difficulty    models.Difficulty     `json:"difficulty"`
	Score         int                   `json:"score"`
	Total         int                   `json:"total"`
	QuestionTypes []models.QuestionType `json:"question_types"`
}

// progressDoc is the on-disk layout of one user's record.
type progressDoc struct {
	UserID         string                               `json:"user_id"`
	QuizHistory    []attemptDoc                         `json:"quiz_history"`
	ViewedSections map[models.Topic][]timestamp         `json:"viewed_sections"`
	MasteryLevels  map[models.Topic]models.MasteryLevel `json:"mastery_levels"`
}

func toDoc(p *models.UserProgress) progressDoc {
	doc := progressDoc{
		UserID:         p.UserID,
		QuizHistory:    make([]attemptDoc, 0, len(p.QuizHistory)),
		ViewedSections: make(map[models.Topic][]timestamp, len(p.ViewedSections)),
		MasteryLevels:  p.MasteryLevels,
	}
	for _, a := range p.QuizHistory {
		types := a.QuestionTypes
		if types == nil {
			types = []models.QuestionType{}
		}
		doc.QuizHistory = append(doc.QuizHistory, attemptDoc{
			Timestamp:     timestamp(a.Timestamp),
			Category:      a.Category,
			Difficulty:    a.Difficulty,
			Score:         a.Score,
			Total:         a.Total,
			QuestionTypes: types,
		})
	}
	for topic, views := range p.ViewedSections {
		out := make([]timestamp, len(views))
		for i, v := range views {
			out[i] = timestamp(v)
		}
		doc.ViewedSections[topic] = out
	}
	return doc
}

func (d progressDoc) toModel(userID string) *models.UserProgress {
	p := &models.UserProgress{
		UserID:         userID,
		QuizHistory:    make([]models.QuizAttempt, 0, len(d.QuizHistory)),
		ViewedSections: make(map[models.Topic][]time.Time, len(d.ViewedSections)),
		MasteryLevels:  d.MasteryLevels,
	}
	for _, a := range d.QuizHistory {
		types := a.QuestionTypes
		if types == nil {
			types = []models.QuestionType{}
		}
		p.QuizHistory = append(p.QuizHistory, models.QuizAttempt{
			Timestamp:     time.Time(a.Timestamp),
			Category:      a.Category,
			Difficulty:    a.Difficulty,
			Score:         a.Score,
			Total:         a.Total,
			QuestionTypes: types,
		})
	}
	for topic, views := range d.ViewedSections {
		out := make([]time.Time, len(views))
		for i, v := range views {
			out[i] = time.Time(v)
		}
		p.ViewedSections[topic] = out
	}
	p.FillTopics()
	return p
}
