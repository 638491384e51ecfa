package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a pfncards error code.
type ErrorCode string

const (
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrMalformedLine     ErrorCode = "MALFORMED_LINE"
	ErrWriteFailed       ErrorCode = "WRITE_FAILED"
	ErrEncoding          ErrorCode = "ENCODING"
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrDeckAlreadyExists ErrorCode = "DECK_ALREADY_EXISTS"
	ErrCancelled         ErrorCode = "CANCELLED"
	ErrInternal          ErrorCode = "INTERNAL"
)

// CardsError represents a structured error with code, message, and details.
type CardsError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *CardsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *CardsError) Unwrap() error {
	return e.Err
}

// NewFileNotFound creates an error for a missing source file.
func NewFileNotFound(path string) *CardsError {
	return &CardsError{
		Code:    ErrFileNotFound,
		Message: fmt.Sprintf("could not find input file '%s'", path),
		Details: map[string]any{"path": path},
	}
}

// NewMalformedLines creates an error summarizing dropped input lines.
// lines holds the 1-based numbers of the offending lines.
func NewMalformedLines(path string, lines []int) *CardsError {
	return &CardsError{
		Code:    ErrMalformedLine,
		Message: fmt.Sprintf("%d malformed line(s) in %s: %v", len(lines), path, lines),
		Details: map[string]any{"path": path, "lines": lines},
	}
}

// NewWriteFailed creates an error for a failure while writing the destination.
func NewWriteFailed(path string, err error) *CardsError {
	return &CardsError{
		Code:    ErrWriteFailed,
		Message: fmt.Sprintf("failed to write %s: %v", path, err),
		Details: map[string]any{"path": path},
		Err:     err,
	}
}

// NewEncoding creates an error for a source line that is not valid UTF-8.
func NewEncoding(path string, line int) *CardsError {
	return &CardsError{
		Code:    ErrEncoding,
		Message: fmt.Sprintf("%s: line %d is not valid UTF-8", path, line),
		Details: map[string]any{"path": path, "line": line},
	}
}

// NewInvalidRequest creates an error for invalid parameters.
func NewInvalidRequest(msg string) *CardsError {
	return &CardsError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a deck that cannot be found.
func NewNotFound(identifier string) *CardsError {
	return &CardsError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("deck not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDeckAlreadyExists creates an error for deck name collisions.
func NewDeckAlreadyExists(name string) *CardsError {
	return &CardsError{
		Code:    ErrDeckAlreadyExists,
		Message: fmt.Sprintf("deck %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(operation string) *CardsError {
	return &CardsError{
		Code:    ErrCancelled,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *CardsError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CardsError{
		Code:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err, or any error it wraps, is a CardsError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CardsError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
