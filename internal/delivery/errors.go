package delivery

import "errors"

var (
	ErrNotFound      = errors.New("delivery: not found")
	ErrEnqueueFailed = errors.New("delivery: enqueue failed")
	ErrLogFailed     = errors.New("delivery: log write failed")
)
