package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"emireminder/models"
	"emireminder/utils"

	"github.com/go-redis/redis/v8"
)

// Cache keeps narrated insights so repeated views do not call the model
// again. Keys hash the prompt, so any change to the bill misses.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Insight, bool)
	Set(ctx context.Context, key string, insight *models.Insight)
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Insight, bool) {
	data, err := c.client.Get(ctx, utils.InsightCachePrefix+key).Result()
	if err != nil {
		return nil, false
	}
	var in models.Insight
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, false
	}
	return &in, true
}

func (c *RedisCache) Set(ctx context.Context, key string, insight *models.Insight) {
	b, err := json.Marshal(insight)
	if err != nil {
		return
	}
	c.client.Set(ctx, utils.InsightCachePrefix+key, b, c.ttl)
}

// MemoryCache is the single-process Cache. Entries expire after ttl.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	insight models.Insight
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.Insight, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	in := e.insight
	return &in, true
}

func (c *MemoryCache) Set(_ context.Context, key string, insight *models.Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{insight: *insight, expires: c.now().Add(c.ttl)}
}
