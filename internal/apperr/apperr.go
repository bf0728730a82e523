// Package apperr defines the failure kinds of the payment verification flow
// and how each one is reported to a callable client.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidArgument
	KindUnconfigured
	KindProviderUnreachable
	KindProviderRejected
	KindStatusMismatch
	KindAmountMismatch
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnconfigured:
		return "unconfigured"
	case KindProviderUnreachable:
		return "provider_unreachable"
	case KindProviderRejected:
		return "provider_rejected"
	case KindStatusMismatch:
		return "status_mismatch"
	case KindAmountMismatch:
		return "amount_mismatch"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// CallableStatus is the canonical status name used in callable error bodies.
type CallableStatus string

const (
	StatusUnauthenticated CallableStatus = "UNAUTHENTICATED"
	StatusInvalidArgument CallableStatus = "INVALID_ARGUMENT"
	StatusAborted         CallableStatus = "ABORTED"
	StatusInternal        CallableStatus = "INTERNAL"
)

func (k Kind) CallableStatus() CallableStatus {
	switch k {
	case KindUnauthenticated:
		return StatusUnauthenticated
	case KindInvalidArgument:
		return StatusInvalidArgument
	case KindProviderRejected, KindStatusMismatch, KindAmountMismatch:
		return StatusAborted
	default:
		return StatusInternal
	}
}

func (s CallableStatus) HTTPStatus() int {
	switch s {
	case StatusUnauthenticated:
		return http.StatusUnauthorized
	case StatusInvalidArgument:
		return http.StatusBadRequest
	case StatusAborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a message safe to show to the caller, and the
// underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
