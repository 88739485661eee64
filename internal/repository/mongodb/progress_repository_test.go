package mongodb_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/anatomyflash/internal/repository"
	"github.com/vytor/anatomyflash/internal/repository/mongodb"
	"github.com/vytor/anatomyflash/internal/repository/repotest"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs only when MONGO_TEST_URI points at a reachable server.
func TestProgressRepositorySuite(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := &repotest.ProgressRepositorySuite{}
	s.NewRepo = func() repository.ProgressRepository {
		name := "anatomy_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		s.T().Cleanup(func() { _ = client.Database(name).Drop(context.Background()) })
		return mongodb.NewProgressRepository(client, name)
	}
	suite.Run(t, s)
}
