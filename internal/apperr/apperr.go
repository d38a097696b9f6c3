package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the HTTP layer can pick a status
// code without string-matching messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnavailable
	KindSlotTaken
	KindAlreadyCancelled
	KindUnauthorized
	KindInvalidInput
	KindConflict
	KindPaymentNotCompleted
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindSlotTaken:
		return "slot_taken"
	case KindAlreadyCancelled:
		return "already_cancelled"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindPaymentNotCompleted:
		return "payment_not_completed"
	case KindUpstream:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// Error is the discriminated failure returned across every service boundary.
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

// New builds a business-rule failure with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and user-facing message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Upstream marks a failure of an external capability (database, payment
// gateway, blob store) so callers can treat it as retryable.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
