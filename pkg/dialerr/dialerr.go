// Package dialerr provides the OS-errno-style error taxonomy shared by every
// connector, dialer, and listener in eyeball.
package dialerr

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Symbolic codes, falling back to the documented constants (§6) when the
// platform's actual errno can't be recovered.
const (
	EINVAL          = 22
	EADDRINUSE      = 98
	ECONNABORTED    = 103
	ECONNREFUSED    = 111
	ENETUNREACH     = 101
	ETIMEDOUT       = 110
	EADDRNOTAVAIL   = 99
	ECodeUnknown    = 0
	ECodeTimeout    = -1 // sentinel: C8 timeout, distinct from ETIMEDOUT syscall errors
	ECodeProgrammer = -2
)

// Error is the single error type used across the module. It carries an
// integer code in the spirit of an OS errno, a rendered message (already
// wrapped with whatever URI/context prefix the raising layer requires), and
// an optional cause for chain-walking with errors.As/errors.Is.
type Error struct {
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no cause.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error with message and preserves cause for chaining.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// InvalidArgument builds the EINVAL error used throughout for malformed
// input (bad URIs, unknown/disabled schemes).
func InvalidArgument(message string) *Error {
	return New(EINVAL, message)
}

// Aborted builds the ECONNABORTED error used for every caller-initiated
// cancellation, at whichever layer observed it.
func Aborted(message string) *Error {
	return New(ECONNABORTED, message)
}

// CodeOf extracts the integer code from err if it is (or wraps) an *Error,
// otherwise returns ECodeUnknown.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ECodeUnknown
}

// ClassifySyscallError recovers the real numeric errno from a network error
// by unwrapping *net.OpError -> *os.SyscallError -> syscall.Errno, falling
// back to the documented constants above when that chain isn't available
// (e.g. on platforms without classic errno semantics, or context-deadline
// errors which aren't syscall failures at all).
func ClassifySyscallError(err error) int {
	if err == nil {
		return ECodeUnknown
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ETIMEDOUT
		}
		var sysErr *os.SyscallError
		if errors.As(opErr.Err, &sysErr) {
			if errors.As(sysErr.Err, &errno) {
				return int(errno)
			}
		}
	}

	if os.IsTimeout(err) {
		return ETIMEDOUT
	}

	return ECodeUnknown
}

// ConnectionFailed renders the C2 transport-failure message shape:
// "Connection to <uri> failed: <detail> (<CODE>)".
func ConnectionFailed(uri string, cause error) *Error {
	code := ClassifySyscallError(cause)
	symbol := SymbolFor(code)
	return Wrap(code, fmt.Sprintf("Connection to %s failed: %s (%s)", uri, cause, symbol), cause)
}

// ConnectionCancelled renders the standard cancellation message, with an
// optional stage qualifier ("during DNS lookup", "during TLS handshake").
func ConnectionCancelled(uri, stage string) *Error {
	if stage == "" {
		return New(ECONNABORTED, fmt.Sprintf("Connection to %s cancelled (ECONNABORTED)", uri))
	}
	return New(ECONNABORTED, fmt.Sprintf("Connection to %s cancelled during %s (ECONNABORTED)", uri, stage))
}

// SymbolFor maps a numeric code back to its documented symbolic name, for
// messages of the shape "... (ECONNREFUSED)". Codes without a well-known
// symbol render as a bare number.
func SymbolFor(code int) string {
	switch code {
	case EINVAL:
		return "EINVAL"
	case EADDRINUSE:
		return "EADDRINUSE"
	case ECONNABORTED:
		return "ECONNABORTED"
	case ECONNREFUSED:
		return "ECONNREFUSED"
	case ENETUNREACH:
		return "ENETUNREACH"
	case ETIMEDOUT:
		return "ETIMEDOUT"
	case EADDRNOTAVAIL:
		return "EADDRNOTAVAIL"
	default:
		return fmt.Sprintf("%d", code)
	}
}
