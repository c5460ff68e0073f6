package loader

import "errors"

var (
	// ErrTemplateNotFound is returned after every source and candidate name
	// has been tried without a hit.
	ErrTemplateNotFound = errors.New("loader: template not found")

	// ErrInvalidName is returned for empty names or names that escape the
	// template root (absolute paths, "..").
	ErrInvalidName = errors.New("loader: invalid template name")

	// ErrSourceFailed wraps backend failures other than a missing template.
	ErrSourceFailed = errors.New("loader: source failed")

	// ErrCacheMiss is returned by Cache.Get when no fresh entry exists.
	ErrCacheMiss = errors.New("loader: cache miss")
)
