// Package apperror defines the semantic error kinds shared by the core and its
// adapters. Kinds are sentinels usable with errors.Is; Error wraps a kind with a
// message and an optional cause.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a semantic error category.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = NewKind("VALIDATION")
	// ErrNotFound marks an identity that does not resolve.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = NewKind("CONFLICT")
	// ErrPersistence marks a storage failure.
	ErrPersistence = NewKind("PERSISTENCE")
	// ErrUnauthorized marks missing or invalid credentials.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
)

// Error carries a kind, an optional message and an optional cause.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With builds an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap builds an error of kind k wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches either the kind or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	return e.err != nil && errors.Is(e.err, target)
}

// Kind returns the semantic kind.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause.
func (e *Error) Message() string { return e.msg }

// ValidationError reports an invalid field value.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidation builds a ValidationError.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is reports true for ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationDetails flattens every ValidationError found in err into a
// field -> reason map. Reasons for the same field are joined with "; ".
func ValidationDetails(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	collect(err, out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func collect(err error, out map[string]string) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collect(e, out)
		}
		return
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return
	}
	field := ve.Field
	if field == "" {
		field = "payload"
	}
	if prev, ok := out[field]; ok && !strings.Contains(prev, ve.Reason) {
		out[field] = prev + "; " + ve.Reason
		return
	}
	out[field] = ve.Reason
}
