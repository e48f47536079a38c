package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore backs the cache with a shared Redis instance so invalidation
// reaches every replica. Failures degrade to cache misses; the persistence
// layer stays the source of truth.
type RedisStore struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisStore(addr string, log *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		log:    log,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && s.log != nil {
			s.log.WithError(err).Warnf("cache: redis get failed for %s", key)
		}
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if key == "" {
		return
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil && s.log != nil {
		s.log.WithError(err).Warnf("cache: redis set failed for %s", key)
	}
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil && s.log != nil {
		s.log.WithError(err).Warn("cache: redis delete failed")
	}
}

func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		if s.log != nil {
			s.log.WithError(err).Warnf("cache: redis scan failed for prefix %s", prefix)
		}
		return
	}
	s.Delete(ctx, keys...)
}
