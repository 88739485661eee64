// Package repotest holds the behaviour every ProgressRepository backend must
// share, as a testify suite each backend package runs against itself.
package repotest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
)

// ProgressRepositorySuite runs against the repository returned by NewRepo,
// which is called before every test and must start empty.
type ProgressRepositorySuite struct {
	suite.Suite
	NewRepo func() repository.ProgressRepository

	repo repository.ProgressRepository
	ctx  context.Context
}

func (s *ProgressRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepo()
}

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func attempt(category models.Topic, difficulty models.Difficulty, score, total int, offset time.Duration) models.QuizAttempt {
	return models.QuizAttempt{
		Timestamp:     base.Add(offset),
		Category:      category,
		Difficulty:    difficulty,
		Score:         score,
		Total:         total,
		QuestionTypes: []models.QuestionType{models.QuestionMultipleChoice, models.QuestionMatching},
	}
}

func (s *ProgressRepositorySuite) TestGet_Missing() {
	p, err := s.repo.Get(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Assert().Nil(p)
}

func (s *ProgressRepositorySuite) TestCreate_IsIdempotent() {
	created, err := s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)
	s.Assert().True(created)

	s.Require().NoError(s.repo.AppendQuizAttempt(s.ctx, "u1",
		attempt(models.TopicDigestive, models.DifficultyBeginner, 7, 10, 0), models.MasteryNotStarted))

	created, err = s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)
	s.Assert().False(created, "an existing record is never overwritten")

	p, err := s.repo.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Assert().Len(p.QuizHistory, 1)
}

func (s *ProgressRepositorySuite) TestCreate_HasEveryTopic() {
	_, err := s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)

	p, err := s.repo.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Assert().Equal("u1", p.UserID)
	s.Assert().Empty(p.QuizHistory)
	for _, t := range models.Topics {
		s.Assert().Contains(p.ViewedSections, t)
		s.Assert().Empty(p.ViewedSections[t])
		s.Assert().Equal(models.MasteryNotStarted, p.MasteryLevels[t])
	}
}

func (s *ProgressRepositorySuite) TestAppendQuizAttempt_StoresLevel() {
	_, err := s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)

	a := attempt(models.TopicRespiratory, models.DifficultyAdvanced, 9, 10, time.Minute)
	s.Require().NoError(s.repo.AppendQuizAttempt(s.ctx, "u1", a, models.MasteryExpert))

	p, err := s.repo.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(p.QuizHistory, 1)
	got := p.QuizHistory[0]
	s.Assert().True(a.Timestamp.Equal(got.Timestamp), "timestamp %v != %v", a.Timestamp, got.Timestamp)
	s.Assert().Equal(a.Category, got.Category)
	s.Assert().Equal(a.Difficulty, got.Difficulty)
	s.Assert().Equal(9, got.Score)
	s.Assert().Equal(10, got.Total)
	s.Assert().Equal(a.QuestionTypes, got.QuestionTypes)
	s.Assert().Equal(models.MasteryExpert, p.MasteryLevels[models.TopicRespiratory])
	s.Assert().Equal(models.MasteryNotStarted, p.MasteryLevels[models.TopicDigestive])
}

func (s *ProgressRepositorySuite) TestAppend_CreatesMissingRecord() {
	s.Require().NoError(s.repo.AppendSectionView(s.ctx, "fresh", models.TopicLymphatic, base))

	p, err := s.repo.Get(s.ctx, "fresh")
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.Assert().Len(p.ViewedSections[models.TopicLymphatic], 1)
	s.Assert().Len(p.MasteryLevels, len(models.Topics))
}

func (s *ProgressRepositorySuite) TestAppendSectionView_KeepsOrder() {
	_, err := s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.repo.AppendSectionView(s.ctx, "u1", models.TopicDigestive, base.Add(time.Duration(i)*time.Hour)))
	}

	p, err := s.repo.Get(s.ctx, "u1")
	s.Require().NoError(err)
	views := p.ViewedSections[models.TopicDigestive]
	s.Require().Len(views, 3)
	for i, v := range views {
		s.Assert().True(v.Equal(base.Add(time.Duration(i)*time.Hour)))
	}
	s.Assert().Empty(p.ViewedSections[models.TopicLymphatic])
}

func (s *ProgressRepositorySuite) TestHistory_FiltersNewestFirst() {
	_, err := s.repo.Create(s.ctx, models.NewUserProgress("u1"))
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, models.NewUserProgress("u2"))
	s.Require().NoError(err)

	entries := []models.QuizAttempt{
		attempt(models.TopicDigestive, models.DifficultyBeginner, 1, 10, 0),
		attempt(models.TopicLymphatic, models.DifficultyBeginner, 2, 10, time.Hour),
		attempt(models.TopicDigestive, models.DifficultyAdvanced, 3, 10, 2*time.Hour),
		attempt(models.TopicDigestive, models.DifficultyBeginner, 4, 10, 3*time.Hour),
	}
	for _, e := range entries {
		s.Require().NoError(s.repo.AppendQuizAttempt(s.ctx, "u1", e, models.MasteryNotStarted))
	}
	s.Require().NoError(s.repo.AppendQuizAttempt(s.ctx, "u2", entries[0], models.MasteryNotStarted))

	all, err := s.repo.History(s.ctx, models.HistoryFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Assert().Equal([]int{4, 3, 2, 1}, scores(all))

	digestive, err := s.repo.History(s.ctx, models.HistoryFilter{UserID: "u1", Category: models.TopicDigestive})
	s.Require().NoError(err)
	s.Assert().Equal([]int{4, 3, 1}, scores(digestive))

	beginner, err := s.repo.History(s.ctx, models.HistoryFilter{
		UserID: "u1", Category: models.TopicDigestive, Difficulty: models.DifficultyBeginner,
	})
	s.Require().NoError(err)
	s.Assert().Equal([]int{4, 1}, scores(beginner))

	page, err := s.repo.History(s.ctx, models.HistoryFilter{UserID: "u1", Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Assert().Equal([]int{3, 2}, scores(page))

	none, err := s.repo.History(s.ctx, models.HistoryFilter{UserID: "nobody"})
	s.Require().NoError(err)
	s.Assert().Empty(none)
}

func (s *ProgressRepositorySuite) TestUsersDoNotInterfere() {
	var wg sync.WaitGroup
	for _, user := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				_ = s.repo.AppendQuizAttempt(s.ctx, user,
					attempt(models.TopicLymphatic, models.DifficultyBeginner, i, 10, time.Duration(i)*time.Minute),
					models.MasteryBeginner)
			}
		}(user)
	}
	wg.Wait()

	for _, user := range []string{"a", "b", "c", "d"} {
		p, err := s.repo.Get(s.ctx, user)
		s.Require().NoError(err)
		s.Require().NotNil(p)
		s.Assert().Len(p.QuizHistory, 5, "user %s", user)
	}
}

func (s *ProgressRepositorySuite) TestPing() {
	s.Assert().NoError(s.repo.Ping(s.ctx))
}

func scores(attempts []models.QuizAttempt) []int {
	out := make([]int, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, a.Score)
	}
	return out
}
