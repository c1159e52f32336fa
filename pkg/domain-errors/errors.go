// Package domainerrors defines the coded error taxonomy returned across service
// boundaries. Stores return sentinel facts; services translate those facts into
// one of these codes so handlers can map them to transport responses without
// inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code names an error kind. Codes are stable and part of the API contract.
type Code string

const (
	CodeUnauthenticated     Code = "unauthenticated"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeInvalidInput        Code = "invalid_input"
	CodeAlreadyRegistered   Code = "already_registered"
	CodeOwnerCannotRegister Code = "owner_cannot_register"
	CodeLastAdminProtected  Code = "last_admin_protected"
	CodeCapacityReached     Code = "capacity_reached"
	CodeStoreUnavailable    Code = "store_unavailable"
	CodeTimeout             Code = "timeout"
	CodeRateLimited         Code = "rate_limited"
	CodeInternal            Code = "internal_error"

	// CodeInvariantViolation is raised by model constructors. Services convert it
	// to CodeInvalidInput before it leaves the core.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error carries a code, a caller-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
