// Package errs defines the error taxonomy shared by every layer.
// Each Kind maps to a stable external code; callers branch on Kind, never on text.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindInvalidStateTransition
	KindPreconditionNotMet
	KindConflict
	KindNotFound
	KindValidation
)

var codes = map[Kind]string{
	KindInternal:               "INTERNAL",
	KindAuthorization:          "AUTHORIZATION_DENIED",
	KindInvalidStateTransition: "INVALID_STATE_TRANSITION",
	KindPreconditionNotMet:     "PRECONDITION_NOT_MET",
	KindConflict:               "CONFLICT",
	KindNotFound:               "NOT_FOUND",
	KindValidation:             "VALIDATION_FAILED",
}

// Code returns the stable external code for the kind.
func (k Kind) Code() string {
	if c, ok := codes[k]; ok {
		return c
	}
	return codes[KindInternal]
}

func (k Kind) String() string { return k.Code() }

// Error is a classified failure with a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
	// CurrentState is populated for invalid transitions so callers can re-fetch.
	CurrentState string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the stable external code.
func (e *Error) Code() string { return e.Kind.Code() }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

func Precondition(format string, args ...any) *Error {
	return newf(KindPreconditionNotMet, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// InvalidTransition reports an action the current state does not permit.
func InvalidTransition(current, format string, args ...any) *Error {
	e := newf(KindInvalidStateTransition, format, args...)
	e.CurrentState = current
	return e
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Public returns the code and reason safe to show outside the process.
// Unclassified errors are reduced to a generic message.
func Public(err error) (code, reason string) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Kind.Code(), e.Reason
	}
	return KindInternal.Code(), "internal error"
}
