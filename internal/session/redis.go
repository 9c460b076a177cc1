package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

const redisKeyPrefix = "portal:session:"

// redisStore persists session records as JSON values in Redis, with an
// optional TTL acting as an absolute session lifetime.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttlOrZero(ttl)}
}

func (s *redisStore) Create(ctx context.Context, key string, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, raw, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, key string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

func (s *redisStore) Destroy(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
