// Package errors provides the structured error taxonomy used throughout the
// service: a numeric AABBCCC code (carried over from the teacher's
// onex-style error code design) plus a transport-agnostic Kind.
//
// There is no HTTP server or gRPC service in this repository (the
// tool-calling transport is out of scope), so unlike the teacher's original
// Errno, this one carries no HTTP status or gRPC code — only a Kind, for the
// tool surface's out-of-band error channel, and an English message.
//
// Error Code Format: AABBCCC (7 digits)
//
//	AA  (00-99): Service/Module code - identifies the source service
//	BB  (00-99): Category code - identifies the error category
//	CCC (000-999): Sequence number - specific error within the category
package errors

import "fmt"

// Kind is the error taxonomy from SPEC_FULL.md §7.
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_ARGUMENT"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidationError     Kind = "VALIDATION_ERROR"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindTimeout             Kind = "TIMEOUT"
	KindCanceled            Kind = "CANCELED"
	KindIncompatibleState   Kind = "INCOMPATIBLE_STATE"
	KindInternal            Kind = "INTERNAL"
)

// Errno represents a structured error with a numeric code, a taxonomy Kind,
// and a message.
type Errno struct {
	// Code is the unique error code.
	Code int `json:"code"`

	// Kind is the transport-agnostic error kind.
	Kind Kind `json:"kind"`

	// MessageEN is the error message.
	MessageEN string `json:"message"`

	// cause is the underlying error.
	cause error
}

// Error implements the error interface.
func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (errno %d): %s: %v", e.Kind, e.Code, e.MessageEN, e.cause)
	}
	return fmt.Sprintf("%s (errno %d): %s", e.Kind, e.Code, e.MessageEN)
}

// Unwrap returns the underlying cause.
func (e *Errno) Unwrap() error {
	return e.cause
}

// WithCause creates a new Errno with the given cause.
func (e *Errno) WithCause(cause error) *Errno {
	return &Errno{Code: e.Code, Kind: e.Kind, MessageEN: e.MessageEN, cause: cause}
}

// WithMessage creates a new Errno with a custom message.
func (e *Errno) WithMessage(msg string) *Errno {
	return &Errno{Code: e.Code, Kind: e.Kind, MessageEN: msg, cause: e.cause}
}

// WithMessagef creates a new Errno with a formatted message.
func (e *Errno) WithMessagef(format string, args ...interface{}) *Errno {
	return &Errno{Code: e.Code, Kind: e.Kind, MessageEN: fmt.Sprintf(format, args...), cause: e.cause}
}

// Is checks if this error matches the target error code.
func (e *Errno) Is(target error) bool {
	if t, ok := target.(*Errno); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new Errno with the given parameters.
func New(code int, kind Kind, messageEN string) *Errno {
	return &Errno{Code: code, Kind: kind, MessageEN: messageEN}
}

// Format implements fmt.Formatter for structured error formatting.
func (e *Errno) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "errno %d [%s]: %s", e.Code, e.Kind, e.MessageEN)
			if e.cause != nil {
				_, _ = fmt.Fprintf(s, "\ncaused by: %+v", e.cause)
			}
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}
