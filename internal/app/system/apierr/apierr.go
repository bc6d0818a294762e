// internal/app/system/apierr/apierr.go
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/osprey/internal/app/system/respond"
	"go.uber.org/zap"
)

// Kind classifies a failure for clients. Handlers translate a Kind into an
// HTTP status; callers branch on it with KindOf.
type Kind string

const (
	BadInput       Kind = "BadInput"
	WeakPassword   Kind = "WeakPassword"
	BadEmail       Kind = "BadEmail"
	Conflict       Kind = "Conflict"
	NotFound       Kind = "NotFound"
	Unauthorized   Kind = "Unauthorized"
	StorageFailure Kind = "StorageFailure"
	RateLimited    Kind = "RateLimited"
)

// Error is a classified failure. Message is safe to show to clients;
// Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Storage wraps a document or blob store failure.
func Storage(err error) error {
	return Wrap(StorageFailure, "storage unavailable", err)
}

// KindOf returns the Kind of err. Errors that were never classified are
// treated as StorageFailure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageFailure
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case BadInput, WeakPassword, BadEmail:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case RateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

type body struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind Kind   `json:"errorKind"`
}

// Write sends err to the client as {success:false, message, errorKind}.
// Storage failures are logged with their cause and reported generically.
func Write(w http.ResponseWriter, err error, log *zap.Logger) {
	kind := KindOf(err)
	msg := "internal error"

	var e *Error
	if errors.As(err, &e) && kind != StorageFailure {
		msg = e.Message
	}

	if kind == StorageFailure && log != nil {
		log.Error("request failed", zap.Error(err))
	}

	respond.JSON(w, Status(kind), body{Success: false, Message: msg, ErrorKind: kind})
}
