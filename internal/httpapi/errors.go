package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/mailroom/internal/delivery"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeMissingInput     = "missing_input"
	CodeUnknownKind      = "unknown_kind"
	CodeNoRecipient      = "no_recipient"
	CodeTemplateNotFound = "template_not_found"
	CodeNotFound         = "not_found"
	CodeSendFailed       = "send_failed"
	CodeInternal         = "internal"
)

// HTTPError is an error with the status and body it is rendered as.
type HTTPError struct {
	// Err is logged and never exposed.
	Err     error
	Code    string
	Message string
	Status  int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func newHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// toHTTPError maps domain errors onto statuses. Unknown errors become 500
// with a generic message.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, mailer.ErrMissingInput):
		return newHTTPError(http.StatusBadRequest, CodeMissingInput, mailer.ErrMissingInput.Error(), err)
	case errors.Is(err, mailer.ErrUnknownKind):
		return newHTTPError(http.StatusNotFound, CodeUnknownKind, err.Error(), err)
	case errors.Is(err, delivery.ErrNotFound):
		return newHTTPError(http.StatusNotFound, CodeNotFound, delivery.ErrNotFound.Error(), err)
	case errors.Is(err, mailer.ErrNoRecipient),
		errors.Is(err, mailer.ErrNoSubject):
		return newHTTPError(http.StatusUnprocessableEntity, CodeNoRecipient, err.Error(), err)
	case errors.Is(err, mailer.ErrTemplateNotFound):
		return newHTTPError(http.StatusInternalServerError, CodeTemplateNotFound, "template is not deployed", err)
	case errors.Is(err, mailer.ErrSendFailed):
		return newHTTPError(http.StatusBadGateway, CodeSendFailed, mailer.ErrSendFailed.Error(), err)
	}
	return newHTTPError(http.StatusInternalServerError, CodeInternal, http.StatusText(http.StatusInternalServerError), err)
}
