package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ErrNotFound reports that a key is absent from the store.
var ErrNotFound = errors.New("kv: key not found")

// Store is the single persistence surface of the application. All
// operations are atomic at single-key granularity. A ttl of zero means
// no expiry.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// GetDel atomically reads and removes a key. Under concurrent calls
	// on the same key exactly one caller observes the value.
	GetDel(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// SetIfAbsent claims a key only if it does not already exist and
	// reports whether the claim succeeded.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

var Module = fx.Module("kv",
	fx.Provide(NewRedisStore),
)

type RedisStore struct {
	rdb *redis.Client
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisStore(p Params) Store {
	return &RedisStore{rdb: p.Redis}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) GetDel(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}
