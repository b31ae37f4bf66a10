package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter partage les compteurs entre plusieurs instances de l'API.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, per time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: per}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// Format de la clé : "ratelimit:create:203.0.113.7"
	k := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	// Premier hit de la fenêtre : on arme l'expiration
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}
