// Package apperr defines the error kinds surfaced by the attendance
// services. Every business-rule rejection maps to exactly one kind so
// the HTTP layer can translate without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers.
type Kind int

const (
	Unknown Kind = iota
	// AuthError covers bad or expired credentials.
	AuthError
	// Forbidden covers role or ownership violations.
	Forbidden
	// NotFound covers missing classes, users, or records.
	NotFound
	// Invalid covers malformed request input.
	Invalid
	// MissingLocation: geo submission without coordinates.
	MissingLocation
	// InvalidLocation: coordinates outside valid lat/lon ranges.
	InvalidLocation
	// OutOfRange: geofence check failed; the error carries the distance.
	OutOfRange
	// InvalidCode: submitted QR code does not match the current one.
	InvalidCode
	// DuplicateSubmission: same student, class, and UTC day.
	DuplicateSubmission
	// Conflict: mutation refused because the record is already terminal.
	Conflict
	// StorageUnavailable: transient storage fault, retryable.
	StorageUnavailable
)

// Error carries a kind alongside a caller-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status the API returns for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case AuthError:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Invalid, MissingLocation, InvalidLocation, OutOfRange, InvalidCode, DuplicateSubmission:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
