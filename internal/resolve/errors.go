package resolve

import (
	"errors"
	"fmt"
)

// ResolveError is the terminal outcome of a failed resolution.
//
// Exhaustion (NOT_FOUND), caller cancellation (CANCELLED), and bad
// input (INVALID_INPUT) are distinct outcomes; callers branch on the
// code through the Is helpers below.
type ResolveError struct {
	// Code identifies the error category.
	Code ResolveErrorCode

	// Message is a human-readable description.
	Message string

	// Input is the identifier or search text being resolved.
	Input string

	// Err is the underlying cause, if any.
	Err error
}

// ResolveErrorCode categorizes resolution errors.
type ResolveErrorCode string

const (
	// ErrCodeNotFound indicates every group, including the ad hoc hint
	// group, was exhausted without a valid result.
	ErrCodeNotFound ResolveErrorCode = "NOT_FOUND"

	// ErrCodeCancelled indicates the caller's cancellation signal fired
	// before a result was found.
	ErrCodeCancelled ResolveErrorCode = "CANCELLED"

	// ErrCodeInvalidInput indicates input that is not a digest, a known
	// identifier, or usable search text. Surfaced before any network
	// attempt.
	ErrCodeInvalidInput ResolveErrorCode = "INVALID_INPUT"
)

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %s (input=%q)", e.Code, e.Message, e.Input)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is sees context
// cancellation and codec errors through the resolve error.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a NOT_FOUND resolution error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeNotFound
}

// IsCancelled returns true if the error is a CANCELLED resolution error.
func IsCancelled(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeCancelled
}

// IsInvalidInput returns true if the error is an INVALID_INPUT error.
func IsInvalidInput(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeInvalidInput
}

func notFound(input string) *ResolveError {
	return &ResolveError{
		Code:    ErrCodeNotFound,
		Message: "no source group produced a valid event",
		Input:   input,
	}
}

func cancelled(input string, cause error) *ResolveError {
	return &ResolveError{
		Code:    ErrCodeCancelled,
		Message: "resolution cancelled",
		Input:   input,
		Err:     cause,
	}
}

func invalidInput(input string, cause error) *ResolveError {
	return &ResolveError{
		Code:    ErrCodeInvalidInput,
		Message: "input is not a valid identifier",
		Input:   input,
		Err:     cause,
	}
}
