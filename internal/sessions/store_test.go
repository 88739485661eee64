package sessions_test

import (
	"context"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/quiz"
	"github.com/vytor/anatomyflash/internal/sessions"
)

type StoreSuite struct {
	suite.Suite
	newStore func() sessions.Store
	store    sessions.Store
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
}

func activeSession(t require.TestingT) quiz.Session {
	bank := quiz.NewBank(map[models.Difficulty][]quiz.Question{
		models.DifficultyIntermediate: {
			quiz.MultipleChoice{
				Base:    quiz.Base{ID: "1", Prompt: "Pick", Category: models.TopicLymphatic},
				Options: []string{"Spleen", "Liver"},
				Answer:  "Spleen",
			},
			quiz.Matching{
				Base:  quiz.Base{ID: "2", Prompt: "Match", Category: models.TopicLymphatic},
				Pairs: []quiz.Pair{{Item: "Thymus", Match: "T cells"}},
			},
		},
	})
	opts := quiz.DefaultOptions()
	opts.Count = 2
	s, err := quiz.New().Start(bank, opts, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	s, err = s.Answer("2", quiz.MatchResponse{"Thymus": "T cells"})
	require.NoError(t, err)
	return s
}

func (s *StoreSuite) TestGet_Missing() {
	got, err := s.store.Get(context.Background(), "nobody")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *StoreSuite) TestSaveGetDelete() {
	ctx := context.Background()
	session := activeSession(s.T())

	s.Require().NoError(s.store.Save(ctx, "u1", session))
	got, err := s.store.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(session, *got)

	other, err := s.store.Get(ctx, "u2")
	s.Require().NoError(err)
	s.Assert().Nil(other, "sessions are per user")

	s.Require().NoError(s.store.Delete(ctx, "u1"))
	got, err = s.store.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *StoreSuite) TestSave_Overwrites() {
	ctx := context.Background()
	active := activeSession(s.T())
	s.Require().NoError(s.store.Save(ctx, "u1", active))

	submitted, err := active.Submit()
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, "u1", submitted))

	got, err := s.store.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Equal(quiz.StateSubmitted, got.State)
	s.Assert().Equal(1, got.Outcome.Score)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() sessions.Store { return sessions.NewMemoryStore() }})
}

// Runs only when REDIS_TEST_ADDR points at a reachable server.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	suite.Run(t, &StoreSuite{newStore: func() sessions.Store {
		return sessions.NewRedisStore(client, "anatomy-test:"+uuid.NewString()+":")
	}})
}
