// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ repository.Locker = (*RedisLocker)(nil)

// RedisLocker is a lease lock: SETNX with a random token, released only by its holder.
type RedisLocker struct {
	cli   *redis.Client
	ttl   time.Duration
	tries int
	wait  time.Duration
}

func NewLocker(c *Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{cli: c.cli, ttl: ttl, tries: 20, wait: 50 * time.Millisecond}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.tries; i++ {
		ok, err := l.cli.SetNX(ctx, "lock:"+key, token, l.ttl).Result()
		if err == nil && ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: lock %s: %v", domain.ErrStore, key, ctx.Err())
		case <-time.After(l.wait):
		}
	}
	return "", fmt.Errorf("%w: lock %s is held", domain.ErrStore, key)
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{"lock:" + key}, token).Result()
	return err
}
