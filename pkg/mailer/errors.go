package mailer

import (
	"errors"

	"github.com/dmitrymomot/mailroom/pkg/kinds"
	"github.com/dmitrymomot/mailroom/pkg/loader"
)

var (
	// ErrMissingInput indicates an empty template id or nil variables.
	ErrMissingInput = errors.New("mailer: template id and variables are required")

	// ErrUnknownKind indicates the template id names no configured kind.
	ErrUnknownKind = kinds.ErrUnknownKind

	// ErrTemplateNotFound indicates no source holds the kind's template.
	ErrTemplateNotFound = loader.ErrTemplateNotFound

	// ErrLayoutNotFound indicates the markdown layout could not be loaded.
	ErrLayoutNotFound = errors.New("mailer: layout not found")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

	// ErrRenderFailed indicates markdown conversion or layout execution failed.
	ErrRenderFailed = errors.New("mailer: failed to render template")

	// ErrNoRecipient indicates no recipient was specified or resolved.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("mailer: failed to send email")

	// ErrInvalidConfig indicates a provider was configured incorrectly.
	ErrInvalidConfig = errors.New("mailer: invalid sender configuration")
)
