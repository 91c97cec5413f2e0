package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"galang/internal/platform/redis"
	"galang/pkg/platform/sentinel"
)

const tokenKeyPrefix = "donation:token:"

// RedisTokens maps payment tokens to external references with a TTL. Expiry
// is delegated to Redis; a token that has lapsed simply stops resolving.
type RedisTokens struct {
	client *redis.Client
}

func NewRedisTokens(client *redis.Client) *RedisTokens {
	return &RedisTokens{client: client}
}

func (s *RedisTokens) Save(ctx context.Context, token, externalRef string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+token, externalRef, ttl).Err(); err != nil {
		return fmt.Errorf("save payment token: %w", err)
	}
	return nil
}

func (s *RedisTokens) Resolve(ctx context.Context, token string) (string, error) {
	ref, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, goredis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve payment token: %w", err)
	}
	return ref, nil
}
