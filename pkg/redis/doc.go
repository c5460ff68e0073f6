// Package redis opens the Redis connection shared by the template cache.
//
// It wraps [github.com/redis/go-redis/v9] with an env-driven [Config],
// ping-with-retry on startup and a health check closure:
//
//	client, err := redis.Open(ctx, cfg.Redis, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//
// Errors are wrapped with [errors.Join] around the sentinels
// [ErrEmptyConnectionURL], [ErrFailedToParseURL], [ErrConnectionFailed]
// and [ErrHealthcheckFailed].
package redis
