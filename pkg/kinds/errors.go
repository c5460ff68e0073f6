package kinds

import "errors"

var (
	// ErrUnknownKind is returned when a kind name is not registered.
	ErrUnknownKind = errors.New("kinds: unknown kind")

	// ErrInvalidOverrides is returned when a kinds override document cannot be parsed.
	ErrInvalidOverrides = errors.New("kinds: invalid overrides")
)
