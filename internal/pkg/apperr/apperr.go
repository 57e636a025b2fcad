package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoRelevantContent marks a retrieval that returned zero matches.
	// The backend call succeeded; there was simply nothing to ground on.
	ErrNoRelevantContent = errors.New("no relevant content found")
)

// FieldError identifies one offending field of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries a structured field/code list so the HTTP layer
// can report validation failures programmatically.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func Field(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// BackendError wraps a failure of an external backend (vector store, LLM).
type BackendError struct {
	Backend string
	Op      string
	Cause   error
}

func (e *BackendError) Error() string {
	if e == nil {
		return "backend failure"
	}
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Cause)
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func Backend(backend, op string, cause error) *BackendError {
	return &BackendError{Backend: backend, Op: op, Cause: cause}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is (or wraps) a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsEmptyResult reports whether err is (or wraps) ErrNoRelevantContent.
func IsEmptyResult(err error) bool { return errors.Is(err, ErrNoRelevantContent) }
