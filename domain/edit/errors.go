package edit

import (
	"errors"
	"fmt"
)

// Kind classifies an edit failure.
type Kind int

// Kind values.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindOutOfRange
	KindConflict
	KindSyntaxRejected
	KindIOFailure
	KindTooLarge
	KindInvalid
)

// Sentinel errors, one per Kind. An *Error matches its kind's sentinel
// with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrOutOfRange     = errors.New("out of range")
	ErrConflict       = errors.New("conflict")
	ErrSyntaxRejected = errors.New("syntax rejected")
	ErrIOFailure      = errors.New("io failure")
	ErrTooLarge       = errors.New("too large")
	ErrInvalid        = errors.New("invalid request")
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindOutOfRange:
		return "out_of_range"
	case KindConflict:
		return "conflict"
	case KindSyntaxRejected:
		return "syntax_rejected"
	case KindIOFailure:
		return "io_failure"
	case KindTooLarge:
		return "too_large"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindOutOfRange:
		return ErrOutOfRange
	case KindConflict:
		return ErrConflict
	case KindSyntaxRejected:
		return ErrSyntaxRejected
	case KindIOFailure:
		return ErrIOFailure
	case KindTooLarge:
		return ErrTooLarge
	case KindInvalid:
		return ErrInvalid
	default:
		return nil
	}
}

// Error is a typed edit failure. It is returned as a value and never
// escapes an operation as a panic.
type Error struct {
	kind    Kind
	message string
	err     error
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Errorf creates an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind that wraps a cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{kind: kind, message: message, err: err}
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the wrapped cause.
func (e *Error) Message() string { return e.message }

// Error implements error.
func (e *Error) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	for k := KindNotFound; k <= KindInvalid; k++ {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return KindUnknown
}

// SyntaxError is returned by a SyntaxValidator that rejects content.
type SyntaxError struct {
	Line    int
	Message string
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
