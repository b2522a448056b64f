// Package throttle rate-limits password reset requests per address using
// Redis. Without a reachable Redis every request is allowed.
package throttle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix     = "jobboard:reset:"
	DefaultWindow = time.Minute
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Window   time.Duration
}

type RedisThrottle struct {
	client *redis.Client
	window time.Duration
}

// New connects to Redis and returns nil when no address is configured or
// the server does not answer, which callers treat as "no throttling".
func New(ctx context.Context, opts Options, logger zerolog.Logger) *RedisThrottle {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, reset throttling disabled")
		_ = client.Close()
		return nil
	}

	return NewWithClient(client, opts.Window)
}

func NewWithClient(client *redis.Client, window time.Duration) *RedisThrottle {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisThrottle{client: client, window: window}
}

// Allow reports whether key has not been seen within the window, and starts
// a new window when it has not.
func (t *RedisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(key), 1, t.window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return ok, nil
}

func (t *RedisThrottle) Close() error {
	return t.client.Close()
}

// key hashes the address so no plain emails are stored in Redis.
func (t *RedisThrottle) key(key string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(key)))
	return keyPrefix + hex.EncodeToString(sum[:])
}
