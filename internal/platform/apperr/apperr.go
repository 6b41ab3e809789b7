// Package apperr classifies service-layer failures so transports can map
// them to protocol codes without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ehr/patientsvc/internal/platform/store"
)

// Kind identifies the class of a service failure.
type Kind string

const (
	KindValidation  Kind = "ValidationFailure"
	KindBadRequest  Kind = "BadRequest"
	KindNotFound    Kind = "NotFound"
	KindConflict    Kind = "Conflict"
	KindUnavailable Kind = "ServiceUnavailable"
)

// MsgIDMismatch is the BadRequest reason for an update whose body id differs
// from the path id.
const MsgIDMismatch = "The id of the request body's entity must match the id of the path parameter"

// Error is a classified failure. Reason is shown to callers verbatim.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same Kind, so errors.Is(err,
// apperr.NotFound("")) checks the class only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func BadRequest(reason string) *Error {
	return &Error{Kind: KindBadRequest, Reason: reason}
}

func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

// FromStore classifies a record store error: a missing row becomes
// NotFound with notFound as reason, a duplicate value becomes Conflict with
// conflict as reason, and anything else is Unavailable. Already classified
// errors pass through.
func FromStore(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, store.ErrNotFound):
		return NotFound(notFound)
	case errors.Is(err, store.ErrDuplicateValue):
		return Conflict(conflict)
	default:
		return Unavailable(err)
	}
}

// Unavailable wraps a store failure that is neither a miss nor a conflict.
func Unavailable(cause error) *Error {
	return &Error{Kind: KindUnavailable, Reason: "The record store is unavailable", Cause: cause}
}

// KindOf returns the Kind of err. Unclassified errors report KindUnavailable.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
