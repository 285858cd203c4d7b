package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Chronicle error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR" // 2
	ErrGeneration ErrorCode = "GENERATION_ERROR" // 3
	ErrRender     ErrorCode = "RENDER_ERROR"     // 4
	ErrNotFound   ErrorCode = "NOT_FOUND"        // 2
	ErrCancelled  ErrorCode = "CANCELLED"        // 1
	ErrInternal   ErrorCode = "INTERNAL"         // 1
)

// ChronicleError represents a structured error with code, exit status, and details.
type ChronicleError struct {
	Code    ErrorCode
	Status  int // process exit code
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *ChronicleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ChronicleError) Unwrap() error {
	return e.Cause
}

// NewValidation creates an error for bad or missing input detected before any external call.
func NewValidation(msg string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrValidation,
		Status:  2,
		Message: msg,
	}
}

// NewMissingContent creates a validation error for a run with nothing to diarize.
func NewMissingContent(date string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrValidation,
		Status:  2,
		Message: fmt.Sprintf("no content to diarize for %s (no --content and no session logs for that date or recent days)", date),
		Details: map[string]any{"date": date},
	}
}

// NewUnsupported creates a validation error for a value outside its allowed set.
func NewUnsupported(field, value string, allowed []string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrValidation,
		Status:  2,
		Message: fmt.Sprintf("unsupported %s %q (allowed: %v)", field, value, allowed),
		Details: map[string]any{"field": field, "value": value, "allowed": allowed},
	}
}

// NewEntryTooThin creates a validation error when an entry is missing required sections.
func NewEntryTooThin(missing []string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrValidation,
		Status:  2,
		Message: fmt.Sprintf("entry missing required sections: %v", missing),
		Details: map[string]any{"missing_sections": missing},
	}
}

// NewGeneration creates an error for a failed or unreachable generation backend.
func NewGeneration(backend string, err error) *ChronicleError {
	msg := "generation failed"
	if err != nil {
		msg = err.Error()
	}
	return &ChronicleError{
		Code:    ErrGeneration,
		Status:  3,
		Message: fmt.Sprintf("%s backend: %s", backend, msg),
		Details: map[string]any{"backend": backend},
		Cause:   err,
	}
}

// NewGenerationStatus creates an error for a backend process that exited with an error status.
func NewGenerationStatus(backend string, exitCode int, stderr string) *ChronicleError {
	msg := fmt.Sprintf("%s backend: exited with status %d", backend, exitCode)
	if stderr != "" {
		msg += ": " + stderr
	}
	return &ChronicleError{
		Code:    ErrGeneration,
		Status:  3,
		Message: msg,
		Details: map[string]any{"backend": backend, "exit_code": exitCode, "stderr": stderr},
	}
}

// NewRender creates an error for a document that could not be produced or written.
func NewRender(path string, err error) *ChronicleError {
	msg := "render failed"
	if err != nil {
		msg = err.Error()
	}
	return &ChronicleError{
		Code:    ErrRender,
		Status:  4,
		Message: fmt.Sprintf("%s: %s", path, msg),
		Details: map[string]any{"path": path},
		Cause:   err,
	}
}

// NewNotFound creates an error for a missing file or entry.
func NewNotFound(identifier string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrNotFound,
		Status:  2,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewCancelled creates an error for an operation interrupted by context cancellation.
func NewCancelled(operation string) *ChronicleError {
	return &ChronicleError{
		Code:    ErrCancelled,
		Status:  1,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *ChronicleError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ChronicleError{
		Code:    ErrInternal,
		Status:  1,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a ChronicleError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ChronicleError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// ExitCode returns the process exit status for err: 0 for nil, the
// ChronicleError status when present, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cErr *ChronicleError
	if stderrors.As(err, &cErr) && cErr.Status > 0 {
		return cErr.Status
	}
	return 1
}
