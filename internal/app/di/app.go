package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"task_backend/internal/app/router"
	authhandler "task_backend/internal/feature/auth/transport/handler"
	authusecase "task_backend/internal/feature/auth/usecase"
	taskshandler "task_backend/internal/feature/tasks/transport/handler"
	tasksusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/config"
	"task_backend/internal/platform/http/handler"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/password"
	infraredis "task_backend/internal/platform/redis"
	"task_backend/internal/shared/ratelimiter"
)

const (
	authLimitMessage = "too many login attempts, please try again later"
	apiLimitMessage  = "too many requests, please try again later"
)

// App is the assembled HTTP application and the resources it owns.
type App struct {
	Router  *gin.Engine
	closers []func(ctx context.Context) error
}

// NewApp builds every component from cfg.
// Redis is optional: when REDIS_URL is unset or unreachable the app runs without cache
// and with in-memory rate limit counters.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	stores, err := NewStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, stores.Close)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		}
	}

	checks := map[string]handler.Check{"database": stores.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(
		stores.Users,
		jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration),
		password.NewHasher(cfg.BcryptCost),
	)
	tasksUC := tasksusecase.NewTasksUsecase(NewTaskRepository(rdb, cfg.TaskCacheTTL, stores.Tasks))

	// Limiter
	limiterStore := NewLimiterStore(rdb)

	app.Router = router.NewRouter(router.Deps{
		Handlers: router.Handlers{
			Auth:    authhandler.NewAuthHandler(authUC),
			Profile: authhandler.NewProfileHandler(authUC),
			Tasks:   taskshandler.NewTasksHandler(tasksUC),
			Health:  handler.NewHealthHandler(checks),
		},
		Verifier:    jwtmw.NewVerifier(cfg.JWTSecret),
		AuthLimiter: ratelimiter.NewRateLimiter("auth", cfg.AuthRateLimit, cfg.RateLimitWindow, authLimitMessage, limiterStore),
		APILimiter:  ratelimiter.NewRateLimiter("api", cfg.APIRateLimit, cfg.RateLimitWindow, apiLimitMessage, limiterStore),
		Options: router.Options{
			FrontendURL:    cfg.FrontendURL,
			MaxBodyBytes:   cfg.MaxBodyBytes,
			TrustedProxies: cfg.TrustedProxies,
			Debug:          cfg.GinMode == gin.DebugMode,
		},
	})
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
