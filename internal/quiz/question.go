// Package quiz holds the question model, the scorer and the quiz session
// state machine. Nothing in this package performs I/O.
package quiz

import (
	"strings"

	"github.com/vytor/anatomyflash/internal/models"
)

// Question is a sealed sum type with one implementation per question type.
// Adding a type means implementing Grade and record, so every scoring and
// encoding path has to handle it before the package compiles.
type Question interface {
	Meta() Base
	Type() models.QuestionType
	// Grade judges a response. A nil response is always incorrect.
	Grade(r Response) Grade

	record() questionRecord
	validate() error
}

// Base carries the fields shared by every question type.
type Base struct {
	ID       string
	Prompt   string
	Category models.Topic
}

func (b Base) Meta() Base { return b }

type FreeResponse struct {
	Base
	Answer string
}

type MultipleChoice struct {
	Base
	Options []string
	Answer  string
}

type Matching struct {
	Base
	Pairs []Pair
}

type Identification struct {
	Base
	// ImageRef is a logical image name resolved outside this package.
	ImageRef string
	Answer   string
}

// Pair is one item and the match it should be paired with.
type Pair struct {
	Item  string `json:"item"`
	Match string `json:"match"`
}

// Grade is the outcome of checking one response, detailed enough to drive a
// side-by-side results view.
type Grade struct {
	Correct  bool
	Given    string
	Expected string
	// Pairs is only set for matching questions.
	Pairs []PairGrade
}

// CorrectPairs counts the matched pairs, for feedback only.
func (g Grade) CorrectPairs() int {
	n := 0
	for _, p := range g.Pairs {
		if p.Correct {
			n++
		}
	}
	return n
}

type PairGrade struct {
	Item     string
	Given    string
	Expected string
	Correct  bool
}

func (FreeResponse) Type() models.QuestionType   { return models.QuestionFreeResponse }
func (MultipleChoice) Type() models.QuestionType { return models.QuestionMultipleChoice }
func (Matching) Type() models.QuestionType       { return models.QuestionMatching }
func (Identification) Type() models.QuestionType { return models.QuestionIdentification }

// normalizeText applies the free-text comparison rule: trimmed and lowercased.
func normalizeText(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func gradeText(r Response, expected string) Grade {
	g := Grade{Expected: expected}
	text, ok := r.(TextResponse)
	if !ok {
		return g
	}
	g.Given = string(text)
	g.Correct = normalizeText(g.Given) == normalizeText(expected)
	return g
}

func (q FreeResponse) Grade(r Response) Grade {
	return gradeText(r, q.Answer)
}

func (q Identification) Grade(r Response) Grade {
	return gradeText(r, q.Answer)
}

// Grade compares the chosen option value exactly, case included.
func (q MultipleChoice) Grade(r Response) Grade {
	g := Grade{Expected: q.Answer}
	text, ok := r.(TextResponse)
	if !ok {
		return g
	}
	g.Given = string(text)
	g.Correct = g.Given == q.Answer
	return g
}

// Grade is all-or-nothing: the question counts only when every pair matches.
func (q Matching) Grade(r Response) Grade {
	given, _ := r.(MatchResponse)
	g := Grade{Pairs: make([]PairGrade, 0, len(q.Pairs))}
	correct := 0
	for _, p := range q.Pairs {
		pg := PairGrade{Item: p.Item, Given: given[p.Item], Expected: p.Match}
		pg.Correct = pg.Given == p.Match
		if pg.Correct {
			correct++
		}
		g.Pairs = append(g.Pairs, pg)
	}
	g.Correct = len(q.Pairs) > 0 && correct == len(q.Pairs)
	return g
}

// Matches returns the distinct match values in pair order, the choices
// offered for every item.
func (q Matching) Matches() []string {
	seen := make(map[string]bool, len(q.Pairs))
	out := make([]string, 0, len(q.Pairs))
	for _, p := range q.Pairs {
		if !seen[p.Match] {
			seen[p.Match] = true
			out = append(out, p.Match)
		}
	}
	return out
}
