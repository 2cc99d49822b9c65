// Package testhelpers starts throwaway Redis and MongoDB containers for
// integration tests.
package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sgeneral-iua/portal-sg/internal/config"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SkipUnlessIntegration skips the test unless INTEGRATION_TESTS is set and
// the run is not -short.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test: INTEGRATION_TESTS not set")
	}
}

// StartRedis runs a redis:7-alpine container and returns a traced client.
func StartRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	SkipUnlessIntegration(t)
	ctx := context.Background()

	container, err := redis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start Redis container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	client := redisclient.NewClient(goredis.NewClient(opts))
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err(), "Failed to ping Redis")

	return client
}

// StartMongo runs a mongo:7.0 container and returns a test database. The
// global config is pointed at it so audit code can resolve collections.
func StartMongo(t *testing.T) *mongo.Database {
	t.Helper()
	SkipUnlessIntegration(t)
	ctx := context.Background()

	container, err := mongodb.Run(ctx,
		"mongo:7.0",
		mongodb.WithUsername("root"),
		mongodb.WithPassword("password"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start MongoDB container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, client.Ping(ctx, nil), "Failed to ping MongoDB")

	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}
	config.AppConfig.MongoURI = uri
	config.AppConfig.MongoDatabase = "portal_sg_test"
	config.AppConfig.AuditLogCollection = "audit_logs"
	config.AppConfig.SessionTTL = time.Hour

	database := client.Database("portal_sg_test")
	config.MongoDB = database
	return database
}
