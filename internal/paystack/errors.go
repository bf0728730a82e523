package paystack

import (
	"errors"
	"fmt"
)

var (
	ErrUnreachable = errors.New("paystack unreachable")
	ErrRejected    = errors.New("paystack rejected request")
	ErrNoSecretKey = errors.New("paystack secret key is not configured")
)

// UnreachableError means the HTTP exchange with Paystack did not complete.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("paystack unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachable }

// RejectedError means Paystack answered but flagged the call as failed,
// e.g. an unknown reference.
type RejectedError struct {
	HTTPStatus int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("paystack rejected request: status=%d message=%q", e.HTTPStatus, e.Message)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }
