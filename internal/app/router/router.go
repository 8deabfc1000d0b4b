package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "task_backend/internal/feature/auth/transport/handler"
	taskshandler "task_backend/internal/feature/tasks/transport/handler"
	"task_backend/internal/platform/http/handler"
	"task_backend/internal/platform/http/middleware"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/shared/ratelimiter"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth    *authhandler.AuthHandler
	Profile *authhandler.ProfileHandler
	Tasks   *taskshandler.TasksHandler
	Health  *handler.HealthHandler
}

// Options are the HTTP settings taken from config.
type Options struct {
	FrontendURL  string
	MaxBodyBytes int64

	// TrustedProxies may set the client IP via X-Forwarded-For. Empty means the socket address is used.
	TrustedProxies []string

	// Debug enables request logging and relaxes security headers.
	Debug bool
}

// Deps is everything NewRouter needs.
type Deps struct {
	Handlers    Handlers
	Verifier    jwtmw.TokenVerifier
	AuthLimiter *ratelimiter.RateLimiter
	APILimiter  *ratelimiter.RateLimiter
	Options     Options
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// レート制限のキーはClientIP。信頼するプロキシ以外のヘッダーは無視する
	if err := r.SetTrustedProxies(d.Options.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies; trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.Recovery())
	if d.Options.Debug {
		r.Use(gin.Logger())
	}
	r.Use(middleware.SecurityHeaders(d.Options.Debug))
	r.Use(cors.New(corsConfig(d.Options.FrontendURL)))
	r.Use(middleware.BodyLimit(d.Options.MaxBodyBytes))

	r.NoRoute(middleware.NotFound)
	r.NoMethod(middleware.MethodNotAllowed)

	api := r.Group("/api")
	// 全APIにIP単位のレート制限
	api.Use(d.APILimiter.Middleware())

	// 導通確認用
	api.GET("/health", d.Handlers.Health.Health)
	api.HEAD("/health", d.Handlers.Health.Health)
	api.OPTIONS("/health", d.Handlers.Health.Health)

	// 認証不要。ログイン試行はさらに厳しく制限
	auth := api.Group("/auth")
	auth.Use(d.AuthLimiter.Middleware())
	{
		// 新規ユーザー登録
		auth.POST("/register", d.Handlers.Auth.Register)
		// ログイン（JWT 発行）
		auth.POST("/login", d.Handlers.Auth.Login)
	}

	// 認証必須のルート
	protected := api.Group("")
	protected.Use(jwtmw.AuthRequired(d.Verifier))
	{
		protected.GET("/user/profile", d.Handlers.Profile.Get)
		protected.PUT("/user/profile", d.Handlers.Profile.Update)

		protected.GET("/tasks", d.Handlers.Tasks.List)
		protected.POST("/tasks", d.Handlers.Tasks.Create)
		protected.PUT("/tasks/:id", d.Handlers.Tasks.Update)
		protected.DELETE("/tasks/:id", d.Handlers.Tasks.Delete)
	}

	return r
}

// corsConfig allows the configured frontend origin only, with credentials.
func corsConfig(frontendURL string) cors.Config {
	return cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
