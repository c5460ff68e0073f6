package health

import "errors"

var (
	// ErrCheckFailed is returned by Response.Err when a check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout wraps check errors caused by the run timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
