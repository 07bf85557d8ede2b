// Package errors provides error types and utilities for ctsubs.
// It extends the standard errors package with context wrapping and the
// sentinels shared by the transport and the search session.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrTimeout indicates the watchdog expired before the search finished
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates the connection to the discovery endpoint failed
	ErrTransport = errors.New("transport failure")

	// ErrUnexpectedStatus indicates a non-2xx response from the discovery endpoint
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrStreamClosed indicates the stream ended before a completion signal
	ErrStreamClosed = errors.New("stream closed before completion")

	// ErrMalformedRecord indicates a data payload could not be decoded into a result
	ErrMalformedRecord = errors.New("malformed record")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

// Error implements the error interface
func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error
func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// StatusError carries the HTTP status of a rejected stream request.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Unwrap lets callers match StatusError against ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsTimeout reports whether the error is a timeout error
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout)
}

// IsInvalidInput reports whether the error is an invalid input error
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsTransport reports whether the error is a transport-level fault
func IsTransport(err error) bool {
	return Is(err, ErrTransport) || Is(err, ErrUnexpectedStatus) || Is(err, ErrStreamClosed)
}

// IsMalformedRecord reports whether the error is a recoverable decode failure
func IsMalformedRecord(err error) bool {
	return Is(err, ErrMalformedRecord)
}

// TransportError marks a network-level failure of operation Op.
// It matches ErrTransport while keeping Err as the unwrap chain.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport as part of the chain.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Transport wraps err as a *TransportError. If err is nil, Transport returns nil.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// RemoteError is a failure message reported by the server in a JSON body.
// Code is the HTTP status, 0 when the response itself was 2xx.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error {
	if e.Code != 0 {
		return ErrUnexpectedStatus
	}
	return ErrTransport
}
