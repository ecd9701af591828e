package services

import (
	"context"
	"fmt"
	"time"

	"mediroute/pkg/cache"
	"mediroute/pkg/logger"
)

// CacheService is the ephemeral keyed store used for active-token caching,
// capacity counters and change-notification publishing.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	HSet(ctx context.Context, key string, values map[string]interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Keys(ctx context.Context, pattern string) ([]string, error)

	Publish(ctx context.Context, channel string, message interface{}) error

	Ping(ctx context.Context) error
}

type cacheService struct {
	redis      *cache.RedisCache
	logger     *logger.Logger
	keyPrefix  string
	defaultTTL time.Duration
}

func NewCacheService(redis *cache.RedisCache, log *logger.Logger, keyPrefix string, defaultTTL time.Duration) CacheService {
	return &cacheService{
		redis:      redis,
		logger:     log,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
	}
}

func (s *cacheService) buildKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if err := s.redis.Get(ctx, s.buildKey(key), dest); err != nil {
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return nil
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration == 0 {
		expiration = s.defaultTTL
	}

	if err := s.redis.Set(ctx, s.buildKey(key), value, expiration); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}

	s.logger.WithField("cache_key", key).Debug("Cache set")
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.buildKey(key)
	}

	if err := s.redis.Delete(ctx, fullKeys...); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, s.buildKey(key))
}

func (s *cacheService) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	return s.redis.HSet(ctx, s.buildKey(key), values)
}

func (s *cacheService) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.redis.HGetAll(ctx, s.buildKey(key))
}

func (s *cacheService) Keys(ctx context.Context, pattern string) ([]string, error) {
	fullKeys, err := s.redis.Keys(ctx, s.buildKey(pattern))
	if err != nil {
		return nil, err
	}

	// Strip the prefix so callers see the keys they asked for.
	if s.keyPrefix == "" {
		return fullKeys, nil
	}
	keys := make([]string, len(fullKeys))
	for i, k := range fullKeys {
		keys[i] = k[len(s.keyPrefix)+1:]
	}
	return keys, nil
}

func (s *cacheService) Publish(ctx context.Context, channel string, message interface{}) error {
	return s.redis.Publish(ctx, channel, message)
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}
