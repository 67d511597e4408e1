package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Extraction error taxonomy. These four are the only errors the pipeline
// surfaces to callers; anything after raw text is obtained degrades into
// the result's confidence instead of failing.
var (
	// ErrConfig: credential missing. Fatal for the call, recoverable
	// process-wide once configured.
	ErrConfig = errors.New("missing configuration")
	// ErrInput: image could not be read or decoded into base64.
	ErrInput = errors.New("unreadable image input")
	// ErrTransport: the provider was reached but reported failure.
	ErrTransport = errors.New("vision provider call failed")
	// ErrEmptyReply: the call succeeded but carried no usable text.
	ErrEmptyReply = errors.New("vision provider returned no text")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ConfigError(message string) error {
	return NewAppError("CONFIG_ERROR", message, ErrConfig)
}

func InputError(message string, cause error) error {
	if cause == nil {
		cause = ErrInput
	} else {
		cause = fmt.Errorf("%w: %w", ErrInput, cause)
	}
	return NewAppError("INPUT_ERROR", message, cause)
}

func TransportError(message string, cause error) error {
	if cause == nil {
		cause = ErrTransport
	} else {
		cause = fmt.Errorf("%w: %w", ErrTransport, cause)
	}
	return NewAppError("TRANSPORT_ERROR", message, cause)
}

func EmptyReplyError(message string) error {
	return NewAppError("EMPTY_REPLY", message, ErrEmptyReply)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Retryable reports whether an extraction error is worth retrying (the
// provider was reached, or replied with nothing). Config and input errors
// need operator or user action instead.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrEmptyReply)
}
