// Package domainerrors defines the coded error type every service in the
// ledger returns. Codes classify failures for callers (which may retry, fix
// the request, or refresh stale state) and drive the HTTP status mapping in
// the transport layer. Stores do not use this package directly; they return
// pkg/platform/sentinel errors which services translate.
package domainerrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	// CodeBadRequest covers malformed requests (unparseable body, bad enum).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput covers identifier parse failures at trust boundaries.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation covers out-of-range or missing domain input: amount
	// below minimum, blank required field, reason too short. Never retried.
	CodeValidation Code = "validation_failed"
	// CodeUnauthorized means no (or invalid) credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the actor lacks the capability or role.
	CodeForbidden Code = "forbidden"
	// CodeNotFound means the referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers uniqueness and existence conflicts.
	CodeConflict Code = "conflict"
	// CodeAlreadyPending: the caller tried to open a flow that is already open.
	CodeAlreadyPending Code = "already_pending"
	// CodeAlreadyResolved: the entity already reached a terminal state.
	CodeAlreadyResolved Code = "already_resolved"
	// CodeInvalidTransition: the requested status change is not permitted
	// from the current state.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeInvariantViolation: an internal consistency check failed (e.g. a
	// negative available balance). Always a bug; never silently corrected.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout: the operation was aborted by a deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal: unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode at call sites that read like
// dErrors.Is(err, dErrors.CodeNotFound).
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message, hiding internals for
// uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its HTTP status. State-machine guards map to
// 409 so admin clients can render "already handled, please refresh".
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyPending, CodeAlreadyResolved, CodeInvalidTransition:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
