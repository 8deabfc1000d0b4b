// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// CachingTaskRepository decorates a TaskRepository with a Redis cache for List.
// Cached lists are keyed by a per-user version; every successful mutation bumps it,
// so a fill racing with a mutation lands under a version nobody reads again.
type CachingTaskRepository struct {
	inner     usecase.TaskRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.TaskRepository = (*CachingTaskRepository)(nil)

// NewCachingTaskRepository decorates a TaskRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "tasks".
func NewCachingTaskRepository(rdb *redis.Client, ttl time.Duration, inner usecase.TaskRepository, namespace string) *CachingTaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "tasks"
	}
	return &CachingTaskRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns cached results when present and fills the cache on a miss.
func (c *CachingTaskRepository) List(ctx context.Context, userID, search string, limit int) ([]entity.Task, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, userID, search, limit)
	}

	// 1) Current version of the user's lists
	version, err := c.version(ctx, userID)
	if err != nil {
		slog.Warn("task cache unavailable", "error", err, "user_id", userID)
		return c.inner.List(ctx, userID, search, limit)
	}
	key := c.cacheKey(userID, version, search, limit)

	// 2) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Task
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 3) Fallback to the store
	out, err := c.inner.List(ctx, userID, search, limit)
	if err != nil {
		return nil, err
	}

	// 4) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// FindByID is not cached.
func (c *CachingTaskRepository) FindByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	return c.inner.FindByID(ctx, userID, id)
}

func (c *CachingTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if err := c.inner.Create(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.UserID)
	return nil
}

func (c *CachingTaskRepository) Update(ctx context.Context, userID, id string, patch usecase.TaskPatch) (*entity.Task, error) {
	t, err := c.inner.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, userID)
	return t, nil
}

func (c *CachingTaskRepository) Delete(ctx context.Context, userID, id string) error {
	if err := c.inner.Delete(ctx, userID, id); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// invalidate makes every cached list of userID unreachable by bumping its version.
// Old entries expire after ttl. Failures are logged, not returned.
func (c *CachingTaskRepository) invalidate(ctx context.Context, userID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.versionKey(userID)).Err(); err != nil {
		slog.Warn("task cache invalidation failed", "error", err, "user_id", userID)
	}
}

// version returns the user's list version. A missing counter is version 0.
func (c *CachingTaskRepository) version(ctx context.Context, userID string) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// versionKey holds the per-user counter. It has no expiry.
func (c *CachingTaskRepository) versionKey(userID string) string {
	return fmt.Sprintf("%s:%s:version", c.namespace, safe(userID))
}

// cacheKey generates a cache key for a specific query.
// Search is case-insensitive, so the term is lower-cased before hashing.
// The hash keeps distinct terms apart whatever characters they contain.
func (c *CachingTaskRepository) cacheKey(userID string, version int64, search string, limit int) string {
	return fmt.Sprintf("%s:%s:list:v%d:%d:%s", c.namespace, safe(userID), version, limit, searchDigest(search))
}

func searchDigest(search string) string {
	if search == "" {
		return "all"
	}
	sum := sha256.Sum256([]byte(strings.ToLower(search)))
	return hex.EncodeToString(sum[:])
}

// keyEscaper escapes characters that would let a user ID run into the next key segment.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	":", `\:`,
)

func safe(s string) string {
	return keyEscaper.Replace(s)
}
