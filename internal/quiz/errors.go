package quiz

import (
	"errors"
	"fmt"

	"github.com/vytor/anatomyflash/internal/models"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// session's current state.
	ErrInvalidTransition = errors.New("quiz: invalid state transition")
	// ErrUnknownQuestion is returned when answering an id outside the session.
	ErrUnknownQuestion = errors.New("quiz: question not in session")
)

// InsufficientQuestionsError reports a filtered pool smaller than the
// requested quiz length.
type InsufficientQuestionsError struct {
	Requested int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("quiz: not enough questions: requested %d, available %d", e.Requested, e.Available)
}

// MalformedQuestionError describes one bank record that was excluded from
// the usable pool.
type MalformedQuestionError struct {
	Difficulty models.Difficulty
	Index      int
	ID         string
	Reason     string
}

func (e *MalformedQuestionError) Error() string {
	id := e.ID
	if id == "" {
		id = "<missing>"
	}
	return fmt.Sprintf("quiz: malformed question %s[%d] (id %s): %s", e.Difficulty, e.Index, id, e.Reason)
}

// OptionError reports an invalid quiz configuration field.
type OptionError struct {
	Field  string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("quiz: invalid %s: %s", e.Field, e.Reason)
}
