package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP
// status without string matching.
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindNoFeeRequired     Kind = "no_fee_required"
	KindPayeeNotOnboarded Kind = "payee_not_onboarded"
	KindSignatureInvalid  Kind = "signature_invalid"
	KindValidation        Kind = "validation"
	KindUpstreamFailure   Kind = "upstream_failure"
)

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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause. Used for upstream/store failures where
// the cause is logged but never surfaced to the caller.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindUpstreamFailure for anything that is
// not an application error (raw store/provider failures).
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstreamFailure
}

// MessageOf returns the caller-safe message for err. Upstream failures get a
// generic message so internal detail never leaks into responses.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUpstreamFailure {
		return appErr.Message
	}
	return "An unexpected error occurred"
}

// StatusOf maps an error to the HTTP status code handlers should respond with.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState, KindCapacityExceeded, KindNoFeeRequired, KindPayeeNotOnboarded:
		return http.StatusUnprocessableEntity
	case KindSignatureInvalid, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
