package quiz

import (
	"encoding/json"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/vytor/anatomyflash/internal/models"
)

// State is the lifecycle position of a quiz session.
type State string

const (
	StateConfiguring State = "configuring"
	StateActive      State = "active"
	StateSubmitted   State = "submitted"
)

// Count bounds offered by the configuration form. The session itself only
// requires a positive count.
const (
	MinCount     = 5
	MaxCount     = 20
	DefaultCount = 10
)

// Options is the quiz configuration chosen while Configuring.
type Options struct {
	Category   models.Topic          `json:"category"`
	Difficulty models.Difficulty     `json:"difficulty"`
	Count      int                   `json:"count"`
	Types      []models.QuestionType `json:"types"`
}

// DefaultOptions selects every topic and type at the default difficulty.
func DefaultOptions() Options {
	return Options{
		Category:   models.AnyTopic,
		Difficulty: models.DefaultDifficulty,
		Count:      DefaultCount,
		Types:      slices.Clone(models.QuestionTypes),
	}
}

func (o Options) Validate() error {
	if o.Category != models.AnyTopic && !o.Category.Valid() {
		return &OptionError{Field: "category", Reason: fmt.Sprintf("unknown topic %q", o.Category)}
	}
	if !o.Difficulty.Valid() {
		return &OptionError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", o.Difficulty)}
	}
	if o.Count < 1 {
		return &OptionError{Field: "count", Reason: "must be at least 1"}
	}
	if len(o.Types) == 0 {
		return &OptionError{Field: "types", Reason: "select at least one question type"}
	}
	for _, t := range o.Types {
		if !t.Valid() {
			return &OptionError{Field: "types", Reason: fmt.Sprintf("unknown question type %q", t)}
		}
	}
	return nil
}

func (o Options) accepts(q Question) bool {
	if o.Category != models.AnyTopic && q.Meta().Category != o.Category {
		return false
	}
	return slices.Contains(o.Types, q.Type())
}

// Feedback is the coarse band shown with a result.
type Feedback string

const (
	FeedbackExcellent Feedback = "excellent"
	FeedbackGood      Feedback = "good"
	FeedbackReview    Feedback = "review"
)

// Outcome is the scored result of a submitted session.
type Outcome struct {
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Difficulty models.Difficulty `json:"difficulty"`
	Category   models.Topic      `json:"category"`
}

func (o Outcome) Percentage() float64 {
	if o.Total <= 0 {
		return 0
	}
	return float64(o.Score) / float64(o.Total) * 100
}

func (o Outcome) Feedback() Feedback {
	switch p := o.Percentage(); {
	case p >= 80:
		return FeedbackExcellent
	case p >= 60:
		return FeedbackGood
	default:
		return FeedbackReview
	}
}

// Rand is the random source used to sample questions. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type runtimeRand struct{}

func (runtimeRand) IntN(n int) int { return rand.IntN(n) }

// Navigation tells the caller where to send the user after a transition.
type Navigation string

const NavigateHome Navigation = "/"

// Session is one quiz attempt. It is a value: every transition returns a new
// Session and leaves the receiver untouched.
type Session struct {
	State     State
	Options   Options
	Questions []Question
	Responses Responses
	Outcome   *Outcome
}

// New returns a Configuring session with default options.
func New() Session {
	return Session{State: StateConfiguring, Options: DefaultOptions()}
}

// Start filters the bank by the options and draws Count questions without
// replacement. On failure the returned session is Configuring and keeps opts.
// A nil rng uses the runtime-seeded global source.
func (s Session) Start(bank *Bank, opts Options, rng Rand) (Session, error) {
	if s.State != StateConfiguring {
		return s, fmt.Errorf("start from %s: %w", s.State, ErrInvalidTransition)
	}
	configuring := Session{State: StateConfiguring, Options: opts}
	if err := opts.Validate(); err != nil {
		return configuring, err
	}

	var pool []Question
	for _, q := range bank.Questions(opts.Difficulty) {
		if opts.accepts(q) {
			pool = append(pool, q)
		}
	}
	if len(pool) < opts.Count {
		return configuring, &InsufficientQuestionsError{Requested: opts.Count, Available: len(pool)}
	}

	if rng == nil {
		rng = runtimeRand{}
	}
	// Partial Fisher-Yates: the first Count slots end up a uniform sample.
	for i := 0; i < opts.Count; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return Session{
		State:     StateActive,
		Options:   opts,
		Questions: pool[:opts.Count:opts.Count],
		Responses: Responses{},
	}, nil
}

// Answer records the latest response for a question. A nil response clears
// any earlier answer.
func (s Session) Answer(questionID string, r Response) (Session, error) {
	if s.State != StateActive {
		return s, fmt.Errorf("answer in %s: %w", s.State, ErrInvalidTransition)
	}
	if _, ok := s.Question(questionID); !ok {
		return s, fmt.Errorf("answer %q: %w", questionID, ErrUnknownQuestion)
	}

	next := s
	next.Responses = maps.Clone(s.Responses)
	if next.Responses == nil {
		next.Responses = Responses{}
	}
	if r == nil {
		delete(next.Responses, questionID)
	} else {
		next.Responses[questionID] = cloneResponse(r)
	}
	return next, nil
}

// Submit scores the session and moves it to Submitted.
func (s Session) Submit() (Session, error) {
	if s.State != StateActive {
		return s, fmt.Errorf("submit in %s: %w", s.State, ErrInvalidTransition)
	}
	res := Score(s.Questions, s.Responses)
	next := s
	next.State = StateSubmitted
	next.Outcome = &Outcome{
		Score:      res.Score,
		Total:      res.Total,
		Difficulty: s.Options.Difficulty,
		Category:   DominantCategory(s.Questions),
	}
	return next, nil
}

// Cancel discards the attempt from any state. The options are kept so the
// form shows the previous choice.
func (s Session) Cancel() Session {
	return Session{State: StateConfiguring, Options: s.Options}
}

// TakeAnother resets a submitted session for a new attempt.
func (s Session) TakeAnother() (Session, error) {
	if s.State != StateSubmitted {
		return s, fmt.Errorf("take another in %s: %w", s.State, ErrInvalidTransition)
	}
	return s.Cancel(), nil
}

// ReturnHome resets a submitted session and asks the caller to navigate home.
func (s Session) ReturnHome() (Session, Navigation, error) {
	if s.State != StateSubmitted {
		return s, "", fmt.Errorf("return home in %s: %w", s.State, ErrInvalidTransition)
	}
	return s.Cancel(), NavigateHome, nil
}

// Question looks up a selected question by id.
func (s Session) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Meta().ID == id {
			return q, true
		}
	}
	return nil, false
}

// Answered counts the questions that currently have a response.
func (s Session) Answered() int {
	n := 0
	for _, q := range s.Questions {
		if _, ok := s.Responses[q.Meta().ID]; ok {
			n++
		}
	}
	return n
}

// QuestionTypes returns the distinct types in the session, in first-seen order.
func (s Session) QuestionTypes() []models.QuestionType {
	var out []models.QuestionType
	for _, q := range s.Questions {
		if !slices.Contains(out, q.Type()) {
			out = append(out, q.Type())
		}
	}
	return out
}

// ReviewItem is one row of the submitted comparison view.
type ReviewItem struct {
	Question Question
	Response Response
	Grade    Grade
}

// Review lists every selected question with the user's response and grade.
func (s Session) Review() ([]ReviewItem, error) {
	if s.State != StateSubmitted {
		return nil, fmt.Errorf("review in %s: %w", s.State, ErrInvalidTransition)
	}
	items := make([]ReviewItem, 0, len(s.Questions))
	for _, q := range s.Questions {
		r := s.Responses[q.Meta().ID]
		items = append(items, ReviewItem{Question: q, Response: r, Grade: q.Grade(r)})
	}
	return items, nil
}

type sessionDocument struct {
	State     State                      `json:"state"`
	Options   Options                    `json:"options"`
	Questions []questionRecord           `json:"questions,omitempty"`
	Responses map[string]json.RawMessage `json:"responses,omitempty"`
	Outcome   *Outcome                   `json:"outcome,omitempty"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	doc := sessionDocument{State: s.State, Options: s.Options, Outcome: s.Outcome}
	for _, q := range s.Questions {
		doc.Questions = append(doc.Questions, q.record())
	}
	if len(s.Responses) > 0 {
		doc.Responses = make(map[string]json.RawMessage, len(s.Responses))
		for id, r := range s.Responses {
			raw, err := EncodeResponse(r)
			if err != nil {
				return nil, fmt.Errorf("encode response %q: %w", id, err)
			}
			doc.Responses[id] = raw
		}
	}
	return json.Marshal(doc)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	switch doc.State {
	case StateConfiguring, StateActive, StateSubmitted:
	default:
		return fmt.Errorf("unknown session state %q", doc.State)
	}

	out := Session{State: doc.State, Options: doc.Options, Outcome: doc.Outcome}
	for i, rec := range doc.Questions {
		q, err := rec.toQuestion()
		if err != nil {
			return fmt.Errorf("decode question %d: %w", i, err)
		}
		out.Questions = append(out.Questions, q)
	}
	if doc.State != StateConfiguring || len(doc.Responses) > 0 {
		out.Responses = make(Responses, len(doc.Responses))
	}
	for id, raw := range doc.Responses {
		r, err := DecodeResponse(raw)
		if err != nil {
			return fmt.Errorf("decode response %q: %w", id, err)
		}
		out.Responses[id] = r
	}
	*s = out
	return nil
}
