package quiz_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/anatomyflash/internal/assets"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/quiz"
)

const bankDocument = `{
  "beginner": {
    "questions": [
      {"id": 1, "type": "multiple_choice", "question": "Which organ filters blood?", "category": "lymphatic",
       "options": ["Spleen", "Heart"], "answer": "Spleen"},
      {"id": 2, "type": "multiple_choice", "question": "No options", "category": "lymphatic", "answer": "Spleen"},
      {"id": 3, "question": "Where does digestion start?", "category": "digestive", "answer": "Mouth"},
      {"id": 3, "question": "Duplicate id", "category": "digestive", "answer": "Mouth"},
      {"id": 4, "type": "identification", "question": "Name it", "category": "respiratory", "answer": "Lungs"}
    ]
  },
  "intermediate": {
    "questions": [
      {"id": "i1", "type": "matching", "question": "Match", "category": "digestive",
       "pairs": [{"item": "Liver", "match": "Bile"}, {"item": "Stomach", "match": "Acid"}]}
    ]
  },
  "expert": {"questions": []}
}`

func TestLoadBank_ReportsMalformedRecords(t *testing.T) {
	bank, problems, err := quiz.LoadBank(strings.NewReader(bankDocument))
	require.NoError(t, err)

	beginner := bank.Questions(models.DifficultyBeginner)
	require.Len(t, beginner, 2, "only well-formed unique records are usable")
	assert.Equal(t, "1", beginner[0].Meta().ID)
	assert.Equal(t, "3", beginner[1].Meta().ID)

	require.Len(t, problems, 4)
	byReason := map[string]*quiz.MalformedQuestionError{}
	for _, p := range problems {
		byReason[p.ID+"/"+string(p.Difficulty)] = p
	}
	assert.Contains(t, byReason, "2/beginner", "multiple choice without options")
	assert.Contains(t, byReason, "4/beginner", "identification without image")
	assert.Contains(t, byReason, "/expert", "unknown difficulty")
	dup := byReason["3/beginner"]
	require.NotNil(t, dup)
	assert.Equal(t, 3, dup.Index)
	assert.Equal(t, "duplicate id", dup.Reason)

	assert.Equal(t, 3, bank.Size())
	assert.Equal(t, []models.Difficulty{models.DifficultyBeginner, models.DifficultyIntermediate}, bank.Difficulties())
}

func TestBank_FallsBackToIntermediate(t *testing.T) {
	bank, _, err := quiz.LoadBank(strings.NewReader(bankDocument))
	require.NoError(t, err)

	advanced := bank.Questions(models.DifficultyAdvanced)
	require.Len(t, advanced, 1)
	assert.Equal(t, "i1", advanced[0].Meta().ID)
}

func TestLoadBank_Errors(t *testing.T) {
	_, _, err := quiz.LoadBank(strings.NewReader("not json"))
	assert.Error(t, err)

	_, problems, err := quiz.LoadBank(strings.NewReader(`{"expert": {"questions": []}}`))
	assert.Error(t, err, "no known difficulty")
	assert.Len(t, problems, 1)
}

func TestLoadBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(bankDocument), 0o600))

	bank, _, err := quiz.LoadBankFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, bank.Size())

	_, _, err = quiz.LoadBankFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func loadShippedBank(t *testing.T) *quiz.Bank {
	t.Helper()
	bank, problems, err := quiz.LoadBankFile(filepath.Join("..", "..", "data", "enhanced_quizzes.json"))
	require.NoError(t, err)
	assert.Empty(t, problems)
	return bank
}

func TestLoadBankFile_ShippedBank(t *testing.T) {
	bank := loadShippedBank(t)

	for _, d := range models.Difficulties {
		opts := quiz.DefaultOptions()
		opts.Difficulty = d
		_, err := quiz.New().Start(bank, opts, seeded())
		require.NoError(t, err, "default quiz at %s", d)

		opts.Count = quiz.MaxCount
		_, err = quiz.New().Start(bank, opts, seeded())
		require.NoError(t, err, "longest quiz at %s", d)

		for _, topic := range models.Topics {
			opts := quiz.DefaultOptions()
			opts.Difficulty = d
			opts.Category = topic
			opts.Count = quiz.MinCount
			_, err := quiz.New().Start(bank, opts, seeded())
			require.NoError(t, err, "shortest %s quiz at %s", topic, d)
		}
	}
}

func TestLoadBankFile_ShippedImagesExist(t *testing.T) {
	bank := loadShippedBank(t)
	resolver := assets.NewStaticResolver("/static/images")

	seen := 0
	for _, d := range models.Difficulties {
		for _, q := range bank.Questions(d) {
			id, ok := q.(quiz.Identification)
			if !ok {
				continue
			}
			seen++
			url, err := resolver.ImageURL(id.ImageRef)
			require.NoError(t, err)
			rel := strings.TrimPrefix(url, "/static/")
			_, err = os.Stat(filepath.Join("..", "..", "web", "static", filepath.FromSlash(rel)))
			assert.NoError(t, err, "question %s image %s", id.Meta().ID, id.ImageRef)
		}
	}
	assert.Positive(t, seen)
}
