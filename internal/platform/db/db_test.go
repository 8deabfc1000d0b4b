package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestParseURL はDATABASE_URLからバックエンドが正しく選ばれることを検証します。
func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Target
	}{
		{"mongodb with db", "mongodb://localhost:27017/scalable-app", Target{DriverMongo, "mongodb://localhost:27017/scalable-app", "scalable-app"}},
		{"mongodb without db", "mongodb://localhost:27017", Target{DriverMongo, "mongodb://localhost:27017", "scalable-app"}},
		{"mongodb srv with options", "mongodb+srv://u:p@cluster.example.net/tasks?retryWrites=true", Target{DriverMongo, "mongodb+srv://u:p@cluster.example.net/tasks?retryWrites=true", "tasks"}},
		{"postgres", "postgres://u:p@db:5432/tasks?sslmode=disable", Target{DriverPostgres, "postgres://u:p@db:5432/tasks?sslmode=disable", ""}},
		{"postgresql scheme", "postgresql://db/tasks", Target{DriverPostgres, "postgresql://db/tasks", ""}},
		{"sqlite scheme", "sqlite://data/tasks.db", Target{DriverSQLite, "data/tasks.db", ""}},
		{"sqlite memory", "sqlite::memory:", Target{DriverSQLite, ":memory:", ""}},
		{"bare file", "./tasks.db", Target{DriverSQLite, "./tasks.db", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseURL(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseURL_Unsupported は未知のスキームで認証情報を漏らさずエラーになることを検証します。
func TestParseURL_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := ParseURL("mysql://root:hunter2@db/tasks")

	assert.ErrorIs(t, err, ErrUnsupportedURL)
	assert.NotContains(t, err.Error(), "hunter2")
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	opener := func(dsn string) (*gorm.DB, error) {
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel: adjusts the package retry interval
	orig := retryInterval
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = orig })

	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attemptCount)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	orig := retryInterval
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = orig })

	attemptCount := 0
	refused := errors.New("connection refused")
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, refused
	}

	_, err := ConnectWithRetry("test-dsn", 50*time.Millisecond, opener)

	assert.ErrorIs(t, err, refused)
	assert.GreaterOrEqual(t, attemptCount, 2)
}

// TestOpenGorm_SQLiteMemory は実際のSQLiteに接続しマイグレーションできることを検証します。
func TestOpenGorm_SQLiteMemory(t *testing.T) {
	type widget struct {
		ID   uint
		Name string
	}
	target, err := ParseURL("sqlite::memory:")
	require.NoError(t, err)

	db, err := OpenGorm(target, time.Second, true, &widget{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&widget{Name: "x"}).Error)
	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormOpener_RejectsMongo(t *testing.T) {
	t.Parallel()

	_, err := GormOpener(DriverMongo)

	assert.ErrorIs(t, err, ErrUnsupportedURL)
}
