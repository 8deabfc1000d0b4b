// Package config loads application settings from the environment.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"task_backend/internal/platform/password"
	"task_backend/internal/shared/ratelimiter"
)

const (
	// insecureJWTSecret is only accepted outside release mode.
	insecureJWTSecret = "your-secret-key"

	defaultDatabaseURL = "mongodb://localhost:27017/scalable-app"
)

// ErrMissingJWTSecret is returned in release mode when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in release mode")

// Config holds every setting the server reads at startup.
type Config struct {
	// サーバー設定
	Port    string
	GinMode string

	// データストア
	DatabaseURL   string
	RunMigrations bool
	RedisURL      string // empty disables Redis

	// 認証
	JWTSecret     string
	JWTExpiration time.Duration
	BcryptCost    int

	// HTTP
	FrontendURL  string
	MaxBodyBytes int64

	// TrustedProxies are the peers whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string

	// レート制限
	RateLimitWindow time.Duration
	AuthRateLimit   int
	APIRateLimit    int

	// Task list cache TTL (Redis only)
	TaskCacheTTL time.Duration
}

// Load reads .env files (if present) and then the environment.
func Load() (*Config, error) {
	loadEnvFiles()

	cfg := &Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DatabaseURL:   getEnv("DATABASE_URL", getEnv("MONGODB_URI", defaultDatabaseURL)),
		RunMigrations: getEnvAsBool("RUN_MIGRATIONS", true),
		RedisURL:      getEnv("REDIS_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiration: getEnvAsDuration("JWT_EXPIRATION", 7*24*time.Hour),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", password.DefaultCost),

		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		MaxBodyBytes: getEnvAsInt64("MAX_BODY_BYTES", 10*1024),

		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", ratelimiter.DefaultWindow),
		AuthRateLimit:   getEnvAsInt("AUTH_RATE_LIMIT", ratelimiter.AuthLimit),
		APIRateLimit:    getEnvAsInt("API_RATE_LIMIT", ratelimiter.APILimit),

		TaskCacheTTL: getEnvAsDuration("TASK_CACHE_TTL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills the development-only secret fallback.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.GinMode == "release" {
			return ErrMissingJWTSecret
		}
		slog.Warn("JWT_SECRET is not set; using an insecure development secret")
		c.JWTSecret = insecureJWTSecret
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 10 * 1024
	}
	return nil
}

func loadEnvFiles() {
	// .env.local が優先。どちらも無ければ環境変数のみ
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			slog.Info("loaded env file", "file", f)
		}
	}
}

// getEnv returns the value of key, or defaultValue if it is empty.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
