package api

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/quiz"
)

// sessionView is the client-facing shape of a quiz session. Expected answers
// only appear in Result, which exists once the session is Submitted.
type sessionView struct {
	State     quiz.State                 `json:"state"`
	Options   quiz.Options               `json:"options"`
	Questions []questionView             `json:"questions"`
	Responses map[string]json.RawMessage `json:"responses"`
	Answered  int                        `json:"answered"`
	Result    *resultView                `json:"result,omitempty"`
}

type questionView struct {
	ID       string              `json:"id"`
	Type     models.QuestionType `json:"type"`
	Prompt   string              `json:"question"`
	Category models.Topic        `json:"category"`
	Options  []string            `json:"options,omitempty"`
	Items    []string            `json:"items,omitempty"`
	Matches  []string            `json:"matches,omitempty"`
	ImageURL string              `json:"image_url,omitempty"`
}

type resultView struct {
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Percentage float64           `json:"percentage"`
	Feedback   quiz.Feedback     `json:"feedback"`
	Difficulty models.Difficulty `json:"difficulty"`
	Category   models.Topic      `json:"category"`
	Review     []reviewView      `json:"review"`
}

type reviewView struct {
	QuestionID string     `json:"question_id"`
	Correct    bool       `json:"correct"`
	Given      string     `json:"given,omitempty"`
	Expected   string     `json:"expected,omitempty"`
	Pairs      []pairView `json:"pairs,omitempty"`
}

type pairView struct {
	Item     string `json:"item"`
	Given    string `json:"given"`
	Expected string `json:"expected"`
	Correct  bool   `json:"correct"`
}

func (s *Server) sessionView(ctx context.Context, sess quiz.Session) sessionView {
	log := logger.FromContext(ctx)

	v := sessionView{
		State:     sess.State,
		Options:   sess.Options,
		Questions: make([]questionView, 0, len(sess.Questions)),
		Responses: make(map[string]json.RawMessage, len(sess.Responses)),
		Answered:  sess.Answered(),
	}
	for _, q := range sess.Questions {
		v.Questions = append(v.Questions, s.questionView(ctx, q))
	}
	for id, r := range sess.Responses {
		raw, err := quiz.EncodeResponse(r)
		if err != nil {
			log.Warn("skipping unencodable response: question_id=%s, err=%v", id, err)
			continue
		}
		v.Responses[id] = raw
	}

	if sess.State == quiz.StateSubmitted && sess.Outcome != nil {
		v.Result = resultFromSession(sess)
	}
	return v
}

func (s *Server) questionView(ctx context.Context, q quiz.Question) questionView {
	meta := q.Meta()
	v := questionView{ID: meta.ID, Type: q.Type(), Prompt: meta.Prompt, Category: meta.Category}

	switch q := q.(type) {
	case quiz.MultipleChoice:
		v.Options = q.Options
	case quiz.Matching:
		for _, p := range q.Pairs {
			v.Items = append(v.Items, p.Item)
		}
		// Pair order would give the answer away.
		v.Matches = q.Matches()
		slices.Sort(v.Matches)
	case quiz.Identification:
		url, err := s.Assets.ImageURL(q.ImageRef)
		if err != nil {
			logger.FromContext(ctx).Warn("unresolvable image: question_id=%s, ref=%s, err=%v", meta.ID, q.ImageRef, err)
			break
		}
		v.ImageURL = url
	}
	return v
}

func resultFromSession(sess quiz.Session) *resultView {
	out := sess.Outcome
	res := &resultView{
		Score:      out.Score,
		Total:      out.Total,
		Percentage: out.Percentage(),
		Feedback:   out.Feedback(),
		Difficulty: out.Difficulty,
		Category:   out.Category,
	}

	items, err := sess.Review()
	if err != nil {
		return res
	}
	res.Review = make([]reviewView, 0, len(items))
	for _, item := range items {
		rv := reviewView{
			QuestionID: item.Question.Meta().ID,
			Correct:    item.Grade.Correct,
			Given:      item.Grade.Given,
			Expected:   item.Grade.Expected,
		}
		for _, p := range item.Grade.Pairs {
			rv.Pairs = append(rv.Pairs, pairView{Item: p.Item, Given: p.Given, Expected: p.Expected, Correct: p.Correct})
		}
		res.Review = append(res.Review, rv)
	}
	return res
}
