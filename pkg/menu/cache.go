package menu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Cache holds composed menus keyed by username. A nil Cache disables
// caching.
type Cache interface {
	Get(ctx context.Context, username string) ([]models.MenuItem, bool)
	Set(ctx context.Context, username string, items []models.MenuItem)
	Invalidate(ctx context.Context, usernames []string)
}

const menuCachePrefix = "menu:user:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, username string) ([]models.MenuItem, bool) {
	payload, err := c.client.Get(ctx, menuCachePrefix+username).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Warn("menu cache read failed")
		}
		return nil, false
	}
	var items []models.MenuItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *RedisCache) Set(ctx context.Context, username string, items []models.MenuItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, menuCachePrefix+username, payload, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("menu cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, usernames []string) {
	if len(usernames) == 0 {
		return
	}
	keys := make([]string, 0, len(usernames))
	for _, username := range usernames {
		keys = append(keys, menuCachePrefix+username)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).Warn("menu cache invalidation failed")
	}
}
