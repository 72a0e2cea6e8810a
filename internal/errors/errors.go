package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the marshalling and body-stream taxonomy.
var (
	ErrInvalidArgument    = errors.New("invalid marshalled request data")
	ErrInvalidBodyStream  = errors.New("body stream is invalid")
	ErrCallbackFailure    = errors.New("foreign callback failed")
	ErrRuntimeUnavailable = errors.New("foreign runtime unavailable")
	ErrAllocation         = errors.New("buffer allocation failed")
	ErrUnsupportedSeek    = errors.New("only seek to the beginning is supported")
	ErrLengthUnavailable  = errors.New("body length unavailable without a callback handle")
	ErrInvalidHandle      = errors.New("unknown callback handle")
)

// ErrVersionMismatch is a variant of ErrInvalidArgument raised when a
// blob's version does not equal the fixed version of its target.
var ErrVersionMismatch = fmt.Errorf("marshalled version does not match target message: %w", ErrInvalidArgument)

// DecodeError reports a failure while decoding a marshalled blob.
type DecodeError struct {
	Field   string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error [%s]: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error [%s]: %s", e.Field, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a decode error for the named wire field.
func NewDecodeError(field, message string, cause error) *DecodeError {
	return &DecodeError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// StreamError reports a failure of a body-stream operation.
type StreamError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stream error [%s]: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("stream error [%s]: %s", e.Operation, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// NewStreamError creates a stream error for the named operation.
func NewStreamError(operation, message string, cause error) *StreamError {
	return &StreamError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// Wrap adds context to an error, preserving the wrapped chain.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
