package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parkly/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// Cache-aside helper
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error

	Ping(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

type service struct {
	client *redis.Client
}

// NewService returns a Redis backed cache, or a pass-through one when client is nil.
func NewService(client *redis.Client) Service {
	if client == nil {
		return noop{}
	}
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}

	return nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN so large caches don't block Redis.
func (s *service) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete pattern error: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("cache get failed, falling back to source", "key", key, "error", err)
	}

	data, err := fetcher()
	if err != nil {
		return err
	}

	// don't fail the request if the write-back fails
	go func() {
		if setErr := s.Set(context.Background(), key, data, ttl); setErr != nil {
			logger.Warn("cache set failed", "key", key, "error", setErr)
		}
	}()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}

	return json.Unmarshal(jsonData, dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// noop is used when Redis is disabled; every read misses.
type noop struct{}

func (noop) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noop) Delete(context.Context, ...string) error { return nil }

func (noop) DeletePattern(context.Context, string) error { return nil }

func (noop) GetOrSet(_ context.Context, _ string, _ time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}
	return json.Unmarshal(jsonData, dest)
}

func (noop) Ping(context.Context) error { return nil }
