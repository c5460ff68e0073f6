package store

import "errors"

var (
	ErrNotFound      = errors.New("store: delivery not found")
	ErrInvalidStatus = errors.New("store: invalid delivery status")
	ErrQuery         = errors.New("store: query failed")
)
