package app

import (
	"context"
	"fmt"
	"time"

	"github.com/devreg/devreg/internal/cache"
	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/internal/database"
	"github.com/devreg/devreg/internal/record/repository"
	"github.com/devreg/devreg/internal/record/service"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// App bundles the record service with the connections behind it.
type App struct {
	Service *service.Service
	Mongo   *mongo.Client
	Redis   *redis.Client
}

// Open connects to MongoDB (or uses an in-memory collection when memory is
// set) and, when configured, Redis for the count cache. A Redis that does
// not answer is logged and skipped.
func Open(ctx context.Context, cfg *config.Config, memory bool) (*App, error) {
	a := &App{}
	var repo repository.Repository
	if memory {
		logger.Infof("using in-memory collection")
		repo = repository.NewMemoryRepo()
	} else {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, time.Second)
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		repo = repository.NewMongoRepo(col)
		logger.Infof("connected to MongoDB: %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	}

	opts := []service.Option{service.WithDatabaseName(cfg.MongoDB.Database)}
	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s), count cache disabled: %v", addr, err)
			_ = rc.Close()
		} else {
			a.Redis = rc
			opts = append(opts, service.WithCountCache(cache.NewCountCache(rc, cfg.Cache.Prefix, cfg.Cache.TTL)))
			logger.Infof("connected to Redis: %s", addr)
		}
	}

	a.Service = service.New(repo, opts...)
	return a, nil
}

// PingMongo checks the MongoDB connection; it succeeds in memory mode.
func (a *App) PingMongo(ctx context.Context) error {
	if a.Mongo == nil {
		return nil
	}
	return a.Mongo.Ping(ctx, nil)
}

// PingRedis checks the Redis connection when one is in use.
func (a *App) PingRedis(ctx context.Context) error {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Ping(ctx).Err()
}

// Close releases every connection.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("redis close: %w", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("mongo disconnect: %w", err)
		}
	}
	return firstErr
}
