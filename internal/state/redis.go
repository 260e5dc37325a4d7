package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRedisKey            = "carcost:state"
	defaultRedisConnectTimeout = 30 * time.Second
)

// RedisConfig locates the Redis server holding the state.
type RedisConfig struct {
	Addr           string        `yaml:"addr" env:"REDIS_ADDR"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"REDIS_DB"`
	Key            string        `yaml:"key" env:"REDIS_KEY"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" env:"REDIS_CONNECT_TIMEOUT"`
}

// RedisPersister keeps the state under a single Redis key.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister connects to Redis, retrying with exponential backoff
// until the connect timeout elapses.
func NewRedisPersister(ctx context.Context, logger *zap.Logger, cfg RedisConfig) (*RedisPersister, error) {
	const operation = "state.NewRedisPersister"
	if logger == nil {
		logger = zap.NewNop()
	}

	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultRedisConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = timeout
	retryPolicy.MaxInterval = 5 * time.Second

	logger.Info("Connecting to Redis...",
		zap.String("op", operation),
		zap.String("addr", cfg.Addr),
	)

	err := backoff.RetryNotify(
		func() error {
			return client.Ping(ctx).Err()
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("Redis connection failed, retrying...",
				zap.String("op", operation),
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	return &RedisPersister{client: client, key: key}, nil
}

// Save stores the state without expiry.
func (p *RedisPersister) Save(ctx context.Context, data []byte) error {
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load returns the stored state or ErrNotFound when the key is missing.
func (p *RedisPersister) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return data, nil
}

// Close closes the Redis connection.
func (p *RedisPersister) Close() error {
	return p.client.Close()
}
