package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories callers may branch on.
type Kind string

const (
	KindConnectionFailed   Kind = "connection_failed"
	KindTokenRefreshFailed Kind = "token_refresh_failed"
	KindTokenRejected      Kind = "token_rejected"
	KindMigrationFailed    Kind = "migration_failed"
	KindParseFailed        Kind = "parse_failed"
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindInternal           Kind = "internal"
)

// Error is an application error carrying a kind, an HTTP status for the API
// surface, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind: two apperr values compare equal when their
// kinds match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ConnectionFailed wraps a failure to reach the remote authority or open the
// local replica.
func ConnectionFailed(msg string, err error) *Error {
	return &Error{Kind: KindConnectionFailed, Message: msg, Status: http.StatusBadGateway, Err: err}
}

// TokenRejected marks an access credential refused by the remote.
func TokenRejected(msg string, err error) *Error {
	return &Error{Kind: KindTokenRejected, Message: msg, Status: http.StatusUnauthorized, Err: err}
}

// TokenRefreshFailed wraps a failed credential refresh.
func TokenRefreshFailed(err error) *Error {
	return &Error{Kind: KindTokenRefreshFailed, Message: "could not refresh access token", Status: http.StatusBadGateway, Err: err}
}

// MigrationFailed wraps a migration script that could not be applied.
func MigrationFailed(version int, err error) *Error {
	return &Error{
		Kind:    KindMigrationFailed,
		Message: fmt.Sprintf("migration %d failed", version),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// ParseFailed marks a stored JSON blob that did not validate.
func ParseFailed(what string, err error) *Error {
	return &Error{
		Kind:    KindParseFailed,
		Message: fmt.Sprintf("invalid stored %s", what),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NotFound marks a missing resource.
func NotFound(resource string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// Validation marks rejected input.
func Validation(field, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Status: http.StatusInternalServerError, Err: err}
}
