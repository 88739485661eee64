package quiz

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/vytor/anatomyflash/internal/models"
)

// Bank holds the usable questions of every difficulty tier. It is read-only
// after construction and safe for concurrent use.
type Bank struct {
	sets map[models.Difficulty][]Question
}

// NewBank builds a bank from already validated questions.
func NewBank(sets map[models.Difficulty][]Question) *Bank {
	b := &Bank{sets: make(map[models.Difficulty][]Question, len(sets))}
	for d, qs := range sets {
		b.sets[d] = slices.Clone(qs)
	}
	return b
}

// Questions returns the set for a difficulty, falling back to the
// intermediate set when the tier is absent.
func (b *Bank) Questions(d models.Difficulty) []Question {
	if qs, ok := b.sets[d]; ok {
		return qs
	}
	return b.sets[models.DefaultDifficulty]
}

// Difficulties lists the tiers present in the bank, in catalogue order.
func (b *Bank) Difficulties() []models.Difficulty {
	var out []models.Difficulty
	for _, d := range models.Difficulties {
		if _, ok := b.sets[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Size returns the total number of usable questions.
func (b *Bank) Size() int {
	n := 0
	for _, qs := range b.sets {
		n += len(qs)
	}
	return n
}

type bankDocument map[string]struct {
	Questions []json.RawMessage `json:"questions"`
}

// LoadBank decodes a bank document keyed by difficulty. Records that fail
// validation are reported and left out; only an unreadable document or one
// with no known difficulty returns an error.
func LoadBank(r io.Reader) (*Bank, []*MalformedQuestionError, error) {
	var doc bankDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode question bank: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make(map[models.Difficulty][]Question)
	var problems []*MalformedQuestionError
	for _, key := range keys {
		d := models.Difficulty(key)
		if !d.Valid() {
			problems = append(problems, &MalformedQuestionError{
				Difficulty: d,
				Index:      -1,
				Reason:     "unknown difficulty, set ignored",
			})
			continue
		}
		qs, bad := decodeSet(d, doc[key].Questions)
		sets[d] = qs
		problems = append(problems, bad...)
	}

	if len(sets) == 0 {
		return nil, problems, fmt.Errorf("question bank has no known difficulty sets")
	}
	return &Bank{sets: sets}, problems, nil
}

// LoadBankFile opens path and calls LoadBank.
func LoadBankFile(path string) (*Bank, []*MalformedQuestionError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

func decodeSet(d models.Difficulty, raws []json.RawMessage) ([]Question, []*MalformedQuestionError) {
	qs := make([]Question, 0, len(raws))
	var problems []*MalformedQuestionError
	seen := make(map[string]bool, len(raws))

	for i, raw := range raws {
		malformed := func(id, reason string) {
			problems = append(problems, &MalformedQuestionError{Difficulty: d, Index: i, ID: id, Reason: reason})
		}

		var rec questionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			malformed("", err.Error())
			continue
		}
		id := string(rec.ID)
		if err := validateRecord(raw); err != nil {
			malformed(id, err.Error())
			continue
		}
		q, err := rec.toQuestion()
		if err != nil {
			malformed(id, err.Error())
			continue
		}
		if seen[id] {
			malformed(id, "duplicate id")
			continue
		}
		seen[id] = true
		qs = append(qs, q)
	}
	return qs, problems
}
