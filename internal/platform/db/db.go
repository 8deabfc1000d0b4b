// Package db opens the primary data store named by DATABASE_URL.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver identifies a storage backend.
type Driver string

const (
	DriverMongo    Driver = "mongodb"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// defaultMongoDatabase is used when a MongoDB URL has no path.
const defaultMongoDatabase = "scalable-app"

// ErrUnsupportedURL is returned when DATABASE_URL names no known backend.
var ErrUnsupportedURL = errors.New("unsupported DATABASE_URL")

// retryInterval is the wait between connection attempts.
var retryInterval = 3 * time.Second

// Target is a parsed DATABASE_URL.
type Target struct {
	Driver Driver
	// DSN is what the driver is opened with.
	DSN string
	// Database is the MongoDB database name. Empty for SQL backends.
	Database string
}

// ParseURL maps DATABASE_URL to a backend.
//
//	mongodb://host/db, mongodb+srv://...  -> MongoDB
//	postgres://..., postgresql://...      -> PostgreSQL via GORM
//	sqlite://path, sqlite::memory:, *.db  -> SQLite via GORM
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "mongodb://"), strings.HasPrefix(raw, "mongodb+srv://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
		}
		name := strings.Trim(u.Path, "/")
		if name == "" {
			name = defaultMongoDatabase
		}
		return Target{Driver: DriverMongo, DSN: raw, Database: name}, nil

	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Target{Driver: DriverPostgres, DSN: raw}, nil

	case strings.HasPrefix(raw, "sqlite://"):
		return Target{Driver: DriverSQLite, DSN: strings.TrimPrefix(raw, "sqlite://")}, nil

	case strings.HasPrefix(raw, "sqlite:"):
		return Target{Driver: DriverSQLite, DSN: strings.TrimPrefix(raw, "sqlite:")}, nil

	case strings.HasSuffix(raw, ".db"), strings.HasSuffix(raw, ".sqlite"), strings.HasPrefix(raw, "file:"):
		return Target{Driver: DriverSQLite, DSN: raw}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(raw))
}

// Opener opens a GORM connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// GormOpener returns the Opener for a SQL driver.
func GormOpener(driver Driver) (Opener, error) {
	var dialect func(string) gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialect = postgres.Open
	case DriverSQLite:
		dialect = sqlite.Open
	default:
		return nil, fmt.Errorf("%w: %s is not a SQL driver", ErrUnsupportedURL, driver)
	}
	return func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(dialect(dsn), &gorm.Config{
			// 一意制約違反を gorm.ErrDuplicatedKey に変換
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		if driver == DriverSQLite {
			// SQLite は単一ライター
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	}, nil
}

// OpenGorm connects to a SQL target and optionally migrates models.
func OpenGorm(t Target, timeout time.Duration, migrate bool, models ...any) (*gorm.DB, error) {
	opener, err := GormOpener(t.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(t.DSN, timeout, opener)
	if err != nil {
		return nil, err
	}
	if migrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// ConnectMongo connects and pings MongoDB, retrying until timeout elapses.
func ConnectMongo(ctx context.Context, t Target, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(t.DSN))
	if err != nil {
		return nil, nil, err
	}
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return client, client.Database(t.Database), nil
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongodb connect failed after %s: %w", timeout, err)
		}
		slog.Warn("mongodb connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// redact hides credentials in a URL for error messages.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
