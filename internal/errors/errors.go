package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Spellbook error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrUnknownCategory ErrorCode = "UNKNOWN_CATEGORY" // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrLocked          ErrorCode = "LOCKED"           // 409
	ErrMalformedRecord ErrorCode = "MALFORMED_RECORD" // 422
	ErrInvalidPackage  ErrorCode = "INVALID_PACKAGE"  // 422
	ErrCancelled       ErrorCode = "CANCELLED"        // 499
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// SpellbookError represents a structured error with code, status, and details.
type SpellbookError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SpellbookError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownCategory creates a 400 error for a category name outside the enumeration.
func NewUnknownCategory(name string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrUnknownCategory,
		Status:  400,
		Message: fmt.Sprintf("unknown category: %q", name),
		Details: map[string]any{"category": name},
	}
}

// NewNotFound creates a 404 error for when a spell cannot be found.
func NewNotFound(identifier string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("spell not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewMalformedRecord creates a 422 error for a record with too few fields.
// line is the 1-based source line, or 0 when unknown.
func NewMalformedRecord(line, got, want int) *SpellbookError {
	msg := fmt.Sprintf("record has %d fields, need at least %d", got, want)
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	return &SpellbookError{
		Code:    ErrMalformedRecord,
		Status:  422,
		Message: msg,
		Details: map[string]any{"line": line, "fields": got, "required": want},
	}
}

// NewLocked creates a 409 error when another process holds the output lock.
func NewLocked(path string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrLocked,
		Status:  409,
		Message: fmt.Sprintf("output is locked by another build: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInvalidPackage creates a 422 error listing every consistency problem
// found in an EPUB package.
func NewInvalidPackage(problems []string) *SpellbookError {
	msg := "invalid package"
	if len(problems) > 0 {
		msg = fmt.Sprintf("invalid package: %s", problems[0])
		if len(problems) > 1 {
			msg += fmt.Sprintf(" (and %d more)", len(problems)-1)
		}
	}
	return &SpellbookError{
		Code:    ErrInvalidPackage,
		Status:  422,
		Message: msg,
		Details: map[string]any{"problems": problems},
	}
}

// NewCancelled creates an error for an operation stopped by context cancellation.
func NewCancelled(op string) *SpellbookError {
	return &SpellbookError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SpellbookError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SpellbookError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error (or anything it wraps) is a SpellbookError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SpellbookError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As extracts a SpellbookError from err, wrapping unknown errors as INTERNAL.
func As(err error) *SpellbookError {
	var sErr *SpellbookError
	if stderrors.As(err, &sErr) {
		return sErr
	}
	return NewInternal(err)
}
