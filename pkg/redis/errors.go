package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Open when REDIS_URL is unset.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	// ErrFailedToParseURL covers unsupported schemes and malformed URLs.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")
	// ErrConnectionFailed is returned once every PING attempt has failed.
	ErrConnectionFailed  = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
