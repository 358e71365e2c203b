package buildcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"experiment-bot/internal/experiments"
)

const keyPrefix = "experiment-bot:build:"

// redisClient is the part of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Redis is a Cache shared between bot instances.
type Redis struct {
	rc  redisClient
	ttl time.Duration
}

// NewRedis connects using a redis:// URL.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{rc: redis.NewClient(opts), ttl: ttl}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rc.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, hash string) (*experiments.Build, bool, error) {
	data, err := r.rc.Get(ctx, keyPrefix+hash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}
	var b experiments.Build
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &b, true, nil
}

func (r *Redis) Set(ctx context.Context, hash string, build *experiments.Build) error {
	data, err := json.Marshal(build)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := r.rc.Set(ctx, keyPrefix+hash, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rc.Close() }
