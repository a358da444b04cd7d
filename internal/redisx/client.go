package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// ErrMiss is returned by Cache.Get for an absent key.
var ErrMiss = errors.New("cache miss")

// Cache is the narrow key/value surface the rest of the code depends on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// Store implements Cache on a redis client.
type Store struct{ R *redis.Client }

func (s Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.R.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (s Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.R.Set(ctx, key, value, ttl).Err()
}

func (s Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.R.SetNX(ctx, key, value, ttl).Result()
}

func (s Store) Del(ctx context.Context, key string) error {
	return s.R.Del(ctx, key).Err()
}
