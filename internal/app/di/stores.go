// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	authadapters "task_backend/internal/feature/auth/adapters"
	authusecase "task_backend/internal/feature/auth/usecase"
	tasksadapters "task_backend/internal/feature/tasks/adapters"
	tasksusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/cache"
	"task_backend/internal/platform/config"
	"task_backend/internal/platform/db"
	"task_backend/internal/platform/http/handler"
	"task_backend/internal/shared/ratelimiter"
)

// connectTimeout bounds the startup retries against the primary store.
const connectTimeout = 30 * time.Second

// Stores are the repositories backing the selected DATABASE_URL.
type Stores struct {
	Users authusecase.UserRepository
	Tasks tasksusecase.TaskRepository
	// Ping reports whether the primary store is reachable.
	Ping  handler.Check
	Close func(ctx context.Context) error
}

// NewStores opens the primary store named by cfg.DatabaseURL.
// MongoDB gets its indexes ensured; SQL backends are auto-migrated when RunMigrations is set.
func NewStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	target, err := db.ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if target.Driver == db.DriverMongo {
		client, database, err := db.ConnectMongo(ctx, target, connectTimeout)
		if err != nil {
			return nil, err
		}
		if err := authadapters.EnsureUserIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ensure user indexes: %w", err)
		}
		if err := tasksadapters.EnsureTaskIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ensure task indexes: %w", err)
		}
		slog.Info("connected to MongoDB", "database", target.Database)
		return &Stores{
			Users: authadapters.NewUserMongo(database),
			Tasks: tasksadapters.NewTaskMongo(database),
			Ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close: client.Disconnect,
		}, nil
	}

	gdb, err := db.OpenGorm(target, connectTimeout, cfg.RunMigrations,
		&authadapters.UserModel{}, &tasksadapters.TaskModel{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	slog.Info("connected to SQL database", "driver", target.Driver)
	return &Stores{
		Users: authadapters.NewUserGorm(gdb),
		Tasks: tasksadapters.NewTaskGorm(gdb),
		Ping:  sqlDB.PingContext,
		Close: func(context.Context) error { return sqlDB.Close() },
	}, nil
}

// NewLimiterStore returns the store shared by the rate limiters.
// If Redis is available, counters live there so every instance shares them.
// Otherwise, they are kept in process memory.
func NewLimiterStore(rdb *redis.Client) ratelimiter.Store {
	if rdb != nil {
		return ratelimiter.NewRedisStore(rdb, "ratelimit")
	}
	return ratelimiter.NewMemoryStore()
}

// NewTaskRepository wraps the task store with the Redis list cache when Redis is available.
func NewTaskRepository(rdb *redis.Client, ttl time.Duration, inner tasksusecase.TaskRepository) tasksusecase.TaskRepository {
	if rdb == nil {
		return inner
	}
	return cache.NewCachingTaskRepository(rdb, ttl, inner, "tasks")
}
