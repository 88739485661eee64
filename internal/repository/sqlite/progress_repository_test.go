package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
	"github.com/vytor/anatomyflash/internal/repository/repotest"
	"github.com/vytor/anatomyflash/internal/repository/sqlite"
	"github.com/vytor/anatomyflash/internal/testutil"
)

func TestProgressRepositorySuite(t *testing.T) {
	s := &repotest.ProgressRepositorySuite{}
	s.NewRepo = func() repository.ProgressRepository {
		db := testutil.NewTestDB(s.T())
		s.T().Cleanup(func() { testutil.MustClose(s.T(), db) })
		return sqlite.NewProgressRepository(db)
	}
	suite.Run(t, s)
}

func TestProgressRepository_MasteryCheckConstraint(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewProgressRepository(db)
	ctx := context.Background()

	err := repo.AppendQuizAttempt(ctx, "u1", models.QuizAttempt{
		Category:   models.TopicDigestive,
		Difficulty: models.DifficultyBeginner,
		Score:      1,
		Total:      1,
	}, models.MasteryLevel(7))
	require.Error(t, err, "levels outside 0..3 are rejected")

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_history`).Scan(&count))
	require.Equal(t, 0, count, "the attempt is rolled back with the level")
}

func TestMigrationsAreRecorded(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)

	var version string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY version LIMIT 1`).Scan(&version)
	require.NotEqual(t, sql.ErrNoRows, err)
	require.NoError(t, err)
	require.Equal(t, "0001_init.sql", version)
}
