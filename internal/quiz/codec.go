package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vytor/anatomyflash/internal/models"
)

// questionRecord is the flat document shape shared by the question bank and
// stored sessions.
type questionRecord struct {
	ID        recordID            `json:"id"`
	Type      models.QuestionType `json:"type,omitempty"`
	Question  string              `json:"question"`
	Category  models.Topic        `json:"category"`
	Answer    string              `json:"answer,omitempty"`
	Options   []string            `json:"options,omitempty"`
	Pairs     []Pair              `json:"pairs,omitempty"`
	ImagePath string              `json:"image_path,omitempty"`
}

// recordID accepts both string and integer ids.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or integer: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be a string or integer, got %s", n)
	}
	*id = recordID(n.String())
	return nil
}

func (q FreeResponse) record() questionRecord {
	return questionRecord{
		ID: recordID(q.ID), Type: q.Type(), Question: q.Prompt, Category: q.Category,
		Answer: q.Answer,
	}
}

func (q MultipleChoice) record() questionRecord {
	return questionRecord{
		ID: recordID(q.ID), Type: q.Type(), Question: q.Prompt, Category: q.Category,
		Answer: q.Answer, Options: slices.Clone(q.Options),
	}
}

func (q Matching) record() questionRecord {
	return questionRecord{
		ID: recordID(q.ID), Type: q.Type(), Question: q.Prompt, Category: q.Category,
		Pairs: slices.Clone(q.Pairs),
	}
}

func (q Identification) record() questionRecord {
	return questionRecord{
		ID: recordID(q.ID), Type: q.Type(), Question: q.Prompt, Category: q.Category,
		Answer: q.Answer, ImagePath: q.ImageRef,
	}
}

// toQuestion converts a record into its variant and validates it. A missing
// type means free response.
func (r questionRecord) toQuestion() (Question, error) {
	base := Base{ID: string(r.ID), Prompt: r.Question, Category: r.Category}

	var q Question
	switch r.Type {
	case models.QuestionFreeResponse, "":
		q = FreeResponse{Base: base, Answer: r.Answer}
	case models.QuestionMultipleChoice:
		q = MultipleChoice{Base: base, Options: r.Options, Answer: r.Answer}
	case models.QuestionMatching:
		q = Matching{Base: base, Pairs: r.Pairs}
	case models.QuestionIdentification:
		q = Identification{Base: base, ImageRef: r.ImagePath, Answer: r.Answer}
	default:
		return nil, fmt.Errorf("unknown question type %q", r.Type)
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func (b Base) validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(b.Prompt) == "" {
		return fmt.Errorf("question text is required")
	}
	if !b.Category.Valid() {
		return fmt.Errorf("unknown category %q", b.Category)
	}
	return nil
}

func (q FreeResponse) validate() error {
	if err := q.Base.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(q.Answer) == "" {
		return fmt.Errorf("free response question requires an answer")
	}
	return nil
}

func (q MultipleChoice) validate() error {
	if err := q.Base.validate(); err != nil {
		return err
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("multiple choice question requires at least two options")
	}
	if q.Answer == "" {
		return fmt.Errorf("multiple choice question requires an answer")
	}
	if !slices.Contains(q.Options, q.Answer) {
		return fmt.Errorf("answer %q is not one of the options", q.Answer)
	}
	return nil
}

func (q Matching) validate() error {
	if err := q.Base.validate(); err != nil {
		return err
	}
	if len(q.Pairs) == 0 {
		return fmt.Errorf("matching question requires pairs")
	}
	items := make(map[string]bool, len(q.Pairs))
	for i, p := range q.Pairs {
		if p.Item == "" || p.Match == "" {
			return fmt.Errorf("pair %d requires both item and match", i)
		}
		if items[p.Item] {
			return fmt.Errorf("duplicate matching item %q", p.Item)
		}
		items[p.Item] = true
	}
	return nil
}

func (q Identification) validate() error {
	if err := q.Base.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(q.ImageRef) == "" {
		return fmt.Errorf("identification question requires an image")
	}
	if strings.TrimSpace(q.Answer) == "" {
		return fmt.Errorf("identification question requires an answer")
	}
	return nil
}

// MarshalQuestion encodes a question in the bank's record shape.
func MarshalQuestion(q Question) ([]byte, error) {
	return json.Marshal(q.record())
}

// UnmarshalQuestion decodes and validates a single bank record.
func UnmarshalQuestion(data []byte) (Question, error) {
	var rec questionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.toQuestion()
}
