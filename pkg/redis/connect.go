package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

// Config holds Redis connection settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdle   time.Duration `env:"REDIS_CONN_MAX_IDLE" envDefault:"10m"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	Timeout       time.Duration `env:"REDIS_TIMEOUT" envDefault:"3s"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report connection attempts.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open creates a Redis client and waits until it answers PING.
// Supports both redis:// and rediss:// (TLS) URL schemes. Failed pings are
// retried RetryAttempts times with a linearly growing pause.
func Open(ctx context.Context, cfg Config, opts ...Option) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o := &options{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}

	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	if cfg.PoolSize > 0 {
		redisOpts.PoolSize = cfg.PoolSize
	}
	redisOpts.MinIdleConns = cfg.MinIdleConns
	redisOpts.ConnMaxIdleTime = cfg.ConnMaxIdle
	if cfg.Timeout > 0 {
		redisOpts.DialTimeout = cfg.Timeout
		redisOpts.ReadTimeout = cfg.Timeout
		redisOpts.WriteTimeout = cfg.Timeout
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(redisOpts)

		err := client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		_ = client.Close()

		o.logger.WarnContext(ctx, "redis ping failed",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.String("error", err.Error()),
		)

		if i == attempts-1 {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
		if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr)
		}
	}

	return nil, ErrConnectionFailed
}

// Healthcheck returns a closure that validates Redis connectivity for health endpoints.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
