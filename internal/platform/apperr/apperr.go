// Package apperr classifies application errors and maps them to HTTP responses.
package apperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the classification of an application error.
type Kind int

const (
	// KindUnexpected is any failure the client cannot act on. Its message is never exposed.
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindTooLarge
	KindTooManyRequests
	KindMethodNotAllowed
)

// Error is an error with a classification and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a 400 error whose message is echoed to the client.
func Validation(message string) *Error { return New(KindValidation, message) }

// Unauthenticated creates a 401 error.
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Forbidden creates a 403 error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound creates a 404 error. Ownership failures use this kind too.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict creates an error for uniqueness violations.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Status returns the HTTP status code for a kind.
// Conflicts answer 400 so duplicate registrations look like any other bad input.
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of err, or KindUnexpected if err is not classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Respond writes err as a JSON error response.
// Unclassified errors are logged and replaced by a generic message.
func Respond(c *gin.Context, err error) {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindUnexpected {
		slog.Error("unexpected error",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote_addr", c.ClientIP(),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(Status(ae.Kind), ErrorResponse{Error: ae.Message})
}

// Abort writes err like Respond and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
