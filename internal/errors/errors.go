package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrSSH     = "SSH"
	ErrSession = "SESSION"
	ErrCache   = "CACHE"
	ErrExec    = "EXEC"
)

// Kind classifies how an error should be handled by retry logic.
// It is assigned once, at the boundary where the underlying operation
// is invoked, so callers never match on message substrings.
type Kind int

const (
	// KindFatal errors are not expected to succeed on retry
	// (misconfiguration, permission denied, closed manager).
	KindFatal Kind = iota
	// KindTransient errors are expected to resolve on reconnect+retry
	// (connection reset, broken session, temporary network failure).
	KindTransient
	// KindTimeout errors hit a deadline; treated as transient by retry
	// policy but kept distinct for logging.
	KindTimeout
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	default:
		return "fatal"
	}
}

// Error represents a structured error with code, message, suggestion, and optional cause.
// The rendered form follows the pattern:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Kind       Kind
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrSSH code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSSH,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// WithKind returns the error with its kind set.
func (e *Error) WithKind(k Kind) *Error {
	e.Kind = k
	return e
}

// Error implements the error interface with formatted multi-line output.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// KindOf reports the handling kind for an arbitrary error. Structured
// errors carry their kind; everything else is classified here, once,
// so downstream retry logic can switch on the result instead of
// matching message substrings.
func KindOf(err error) Kind {
	if err == nil {
		return KindFatal
	}

	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindTransient
	}

	return KindFatal
}

// IsRetryable reports whether retry logic should attempt the operation again.
// Timeouts count as transient.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindTimeout:
		return true
	default:
		return false
	}
}

// Transient wraps err as a retryable structured error with the given code.
func Transient(err error, code, message string) *Error {
	return WrapWithCode(err, code, message, "").WithKind(KindTransient)
}
