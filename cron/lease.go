package cron

import (
	"context"
	"sync"
	"time"

	"emireminder/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker hands out the single sweep lease. ok is false while another
// holder has it.
type Locker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// releaseScript deletes the lease only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLease serializes sweeps across processes sharing one Redis.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLease{client: client, ttl: ttl}
}

func (l *RedisLease) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, utils.SweepLeaseKey, token, l.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseScript.Run(ctx, l.client, []string{utils.SweepLeaseKey}, token)
	}
	return release, true, nil
}

// LocalLease serializes sweeps inside one process.
type LocalLease struct {
	mu sync.Mutex
}

func (l *LocalLease) Acquire(context.Context) (func(), bool, error) {
	if !l.mu.TryLock() {
		return func() {}, false, nil
	}
	return l.mu.Unlock, true, nil
}
