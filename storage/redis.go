package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/golog"
)

func InitializeRedis(redisURL string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	})

	golog.Infof("redis initialized with address: %s", redisURL)
	return client
}

const refreshTokenPrefix = "refresh:"

// RedisRefreshStore keeps the allow-list of issued refresh tokens.
type RedisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshTokenPrefix+token, "true", ttl).Err()
}

// Consume reports whether the token was still valid and removes it, so a
// refresh token can be exchanged once.
func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (bool, error) {
	val, err := s.client.Get(ctx, refreshTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.client.Del(ctx, refreshTokenPrefix+token).Err(); err != nil {
		return false, err
	}
	return val == "true", nil
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshTokenPrefix+token).Err()
}
