package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// MemoryRedisURI selects the in-process store instead of a Redis server.
const MemoryRedisURI = "memory://"

var (
	// MongoDB holds the audit log database
	MongoDB *mongo.Database
	// Redis holds session-scoped portal state
	Redis redisclient.KV
)

// InitMongoDB connects to MongoDB and ensures the audit log indexes
func InitMongoDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := ensureAuditLogIndexes(ctx, MongoDB.Collection(AppConfig.AuditLogCollection)); err != nil {
		logging.Logger.Error("failed to ensure audit log indexes", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// InitRedis initializes the session store connection
func InitRedis(ctx context.Context) error {
	if AppConfig.RedisURI == MemoryRedisURI {
		Redis = redisclient.NewMemoryClient()
		logging.Logger.Warn("using in-process session store; state is lost on restart")
		return nil
	}

	var (
		client *redisclient.Client
		target string
	)
	if AppConfig.RedisClusterEnabled {
		client = redisclient.NewClusterClient(redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    AppConfig.RedisClusterAddrs,
			Password: AppConfig.RedisPassword,
		}))
		target = strings.Join(AppConfig.RedisClusterAddrs, ",")
	} else {
		opts, err := redisOptions(AppConfig.RedisURI, AppConfig.RedisPassword, AppConfig.RedisDB)
		if err != nil {
			return err
		}
		client = redisclient.NewClient(redis.NewClient(opts))
		target = opts.Addr
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to Redis at %s: %w", target, err)
	}

	Redis = client
	logging.Logger.Info("connected to Redis",
		zap.String("addr", target),
		zap.Bool("cluster", AppConfig.RedisClusterEnabled))
	return nil
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(uri, password string, db int) (*redis.Options, error) {
	var opts *redis.Options
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: uri}
	}

	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	return opts, nil
}

// maskMongoURI masks credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}

// ensureAuditLogIndexes creates the audit log indexes that don't exist yet
func ensureAuditLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	existing := make(map[string]bool)
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok {
			existing[name] = true
		}
	}

	var toCreate []mongo.IndexModel
	for _, model := range auditLogIndexModels() {
		if !existing[*model.Options.Name] {
			toCreate = append(toCreate, model)
		}
	}
	if len(toCreate) == 0 {
		return nil
	}

	if _, err := collection.Indexes().CreateMany(ctx, toCreate); err != nil {
		// another instance may have created it first
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("create indexes: %w", err)
	}

	logging.Logger.Info("created audit log indexes",
		zap.String("collection", collection.Name()),
		zap.Int("count", len(toCreate)))
	return nil
}

func auditLogIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("user_id_1_timestamp_-1"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "resource", Value: 1}},
			Options: options.Index().SetName("action_1_resource_1"),
		},
		{
			// keep audit logs for 1 year
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("timestamp_ttl").SetExpireAfterSeconds(365 * 24 * 60 * 60),
		},
	}
}
