package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRevocationKeyPrefix namespaces blacklist keys in Redis
const DefaultRevocationKeyPrefix = "auth:bl:"

// RedisRevocationStore keeps one key per revoked token. Keys expire with
// the token so Redis does the pruning.
type RedisRevocationStore struct {
	rdb    redis.UniversalClient
	prefix string
	clock  func() time.Time
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// NewRedisRevocationStore creates a store from a URL such as
// redis://:pass@host:6379/0 and pings it before returning.
func NewRedisRevocationStore(ctx context.Context, redisURL, prefix string) (*RedisRevocationStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewRedisRevocationStoreWithClient(rdb, prefix), nil
}

// NewRedisRevocationStoreWithClient wraps an existing client
func NewRedisRevocationStoreWithClient(rdb redis.UniversalClient, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = DefaultRevocationKeyPrefix
	}
	return &RedisRevocationStore{rdb: rdb, prefix: prefix, clock: time.Now}
}

func (s *RedisRevocationStore) key(token string) string { return s.prefix + token }

// Add stores the token until its expiry. A token that is already expired
// still gets a short lived key so a concurrent Contains sees it.
func (s *RedisRevocationStore) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.clock())
	if ttl < time.Second {
		ttl = time.Second
	}

	err := s.rdb.SetNX(ctx, s.key(token), expiresAt.Unix(), ttl).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (s *RedisRevocationStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) Close() error { return s.rdb.Close() }
