package notification

import (
	"context"
	"sync"
	"time"

	"emireminder/utils"

	"github.com/go-redis/redis/v8"
)

// DeliveryGuard remembers which delivery keys were already handed to a
// transport, so a reminder whose outcome failed to persist is not sent twice.
type DeliveryGuard interface {
	// Claim reports true when key was not claimed before.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key after a failed send.
	Release(ctx context.Context, key string) error
}

type RedisDeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeliveryGuard(client *redis.Client, ttl time.Duration) *RedisDeliveryGuard {
	if ttl <= 0 {
		ttl = utils.DefaultDeliveryKeyTTL
	}
	return &RedisDeliveryGuard{client: client, ttl: ttl}
}

func (g *RedisDeliveryGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, utils.DeliveryKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

func (g *RedisDeliveryGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, utils.DeliveryKeyPrefix+key).Err()
}

// MemoryDeliveryGuard keeps claims in process memory. Like the Redis keys,
// a claim lapses ttl after it was made.
type MemoryDeliveryGuard struct {
	mu        sync.Mutex
	ttl       time.Duration
	claimed   map[string]time.Time
	lastPrune time.Time
	now       func() time.Time
}

func NewMemoryDeliveryGuard(ttl time.Duration) *MemoryDeliveryGuard {
	if ttl <= 0 {
		ttl = utils.DefaultDeliveryKeyTTL
	}
	return &MemoryDeliveryGuard{ttl: ttl, claimed: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryDeliveryGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.prune(now)
	if at, ok := g.claimed[key]; ok && now.Sub(at) < g.ttl {
		return false, nil
	}
	g.claimed[key] = now
	return true, nil
}

func (g *MemoryDeliveryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, key)
	return nil
}

// prune drops lapsed claims, at most once a minute.
func (g *MemoryDeliveryGuard) prune(now time.Time) {
	if now.Sub(g.lastPrune) < time.Minute {
		return
	}
	g.lastPrune = now
	for key, at := range g.claimed {
		if now.Sub(at) >= g.ttl {
			delete(g.claimed, key)
		}
	}
}

func (g *MemoryDeliveryGuard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claimed)
}
