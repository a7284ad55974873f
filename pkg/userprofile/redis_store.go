package userprofile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expkit/expkit/pkg/config"
)

// RedisConfig configures the Redis-backed profile store connection.
type RedisConfig struct {
	ConnectionURL  string        `env:"PROFILE_REDIS_URL" envDefault:"redis://localhost:6379/0"` // "redis://:password@host:6379/0"
	ConnectTimeout time.Duration `env:"PROFILE_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// RedisStore persists user profiles as JSON documents in Redis, one key per
// visitor. Suitable for deployments where multiple SDK instances must agree
// on sticky bucketing.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the Redis key prefix for profile entries.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithTTL sets an expiry on stored profiles. Zero means profiles never
// expire, which is the default: sticky bucketing is only sticky while the
// stored decision survives.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore wraps an existing Redis client in a profile store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: "expkit:profile:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConnectRedisStore dials Redis from config and verifies the connection
// before wrapping it in a store.
func ConnectRedisStore(ctx context.Context, cfg RedisConfig, opts ...RedisOption) (*RedisStore, error) {
	connOpt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client := redis.NewClient(connOpt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrLookupFailed, err)
	}
	return NewRedisStore(client, opts...), nil
}

// ConnectRedisStoreFromEnv loads RedisConfig from the process environment
// (PROFILE_REDIS_* variables) and dials Redis with it.
func ConnectRedisStoreFromEnv(ctx context.Context, opts ...RedisOption) (*RedisStore, error) {
	var cfg RedisConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return ConnectRedisStore(ctx, cfg, opts...)
}

// Lookup fetches and decodes a visitor's profile, returning (nil, nil) when
// no profile is stored.
func (s *RedisStore) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}

	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, errors.Join(ErrInvalidProfileMap, err)
	}
	return profile, nil
}

// Save encodes and stores the profile map under the visitor's key.
func (s *RedisStore) Save(ctx context.Context, profile map[string]any) error {
	userID, ok := profile[UserIDKey].(string)
	if !ok || userID == "" {
		return ErrInvalidProfileMap
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (s *RedisStore) key(userID string) string {
	return s.keyPrefix + userID
}
