// Package cache stores serialized entity metadata between calls. The
// metadata factory itself never caches, so callers put one of these in
// front of it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a byte-valued key store
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config selects and configures a backend
type Config struct {
	Backend string
	// TTL applies when Set is called with a zero ttl. Negative means no expiry.
	TTL    time.Duration
	Prefix string
	Redis  RedisOptions
}

// RedisOptions holds the connection settings of the Redis backend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		TTL:     10 * time.Minute,
		Prefix:  "entitymeta:",
		Redis:   RedisOptions{Addr: "localhost:6379"},
	}
}

// ErrMiss is matched by every cache miss
var ErrMiss = errors.New("cache miss")

// MissError reports the key that was not found
type MissError struct {
	Key string
}

func (e MissError) Error() string {
	return "cache miss: " + e.Key
}

// Is makes MissError match ErrMiss
func (e MissError) Is(target error) bool {
	return target == ErrMiss
}

// IsMiss reports whether err is a cache miss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// New builds the backend named in cfg. Redis is pinged before use.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", BackendMemory:
		logger.Debug("using memory cache", zap.Duration("ttl", cfg.TTL))
		return NewMemory(cfg), nil
	case BackendNone:
		return Noop{}, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}

		logger.Debug("using redis cache", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.TTL))
		return NewRedis(client, cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(_ context.Context, key string) ([]byte, error) { return nil, MissError{Key: key} }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Clear(context.Context) error { return nil }

func (Noop) Exists(context.Context, string) (bool, error) { return false, nil }

func (Noop) Close() error { return nil }
