package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlocklist stores revoked token ids in Redis with a TTL matching the
// token's remaining lifetime, so entries expire on their own.
type RedisBlocklist struct {
	client *redis.Client
}

func NewRedisBlocklist(client *redis.Client) *RedisBlocklist {
	return &RedisBlocklist{client: client}
}

func blocklistKey(jti string) string {
	return "auth:revoked:" + jti
}

func (b *RedisBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, blocklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: blocklist set: %w", err)
	}
	return nil
}

func (b *RedisBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blocklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("auth: blocklist lookup: %w", err)
	}
	return n > 0, nil
}
