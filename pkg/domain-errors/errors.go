// Package domainerrors carries coded errors across service boundaries.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate them
// into coded errors so transports can map a failure to a response without
// string matching.
package domainerrors

import (
	"errors"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"

	// CodeInvalidInterval marks a membership whose start is after its end.
	CodeInvalidInterval Code = "invalid_interval"
	// CodeActiveMembershipConflict marks a write that would leave two
	// overlapping memberships for the same person and organization.
	CodeActiveMembershipConflict Code = "active_membership_conflict"
	// CodeIdentityConflict marks a merge whose source and target sets are
	// inconsistent (target among sources, mixed kinds, cyclic hierarchy).
	CodeIdentityConflict Code = "identity_conflict"
	CodeRateLimited      Code = "rate_limited"
)

// Coder is implemented by errors that expose a domain code. Typed errors
// declared by services implement it so HasCode works across packages.
type Coder interface {
	ErrorCode() Code
}

// Error is the generic coded error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode implements Coder.
func (e *Error) ErrorCode() Code {
	return e.Code
}

// New returns a coded error with a message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code found in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if c, ok := err.(Coder); ok && c.ErrorCode() == code {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				if HasCode(e, code) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}
