package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed or missing field on a create or update request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, &ValidationError{Field: field, Message: message})
}

// OrNil returns nil when nothing was collected so callers can return it directly.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NotFoundError reports that a referenced resource does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ForbiddenError reports that a resource exists but belongs to another owner.
// Transports may choose to present it as not found.
type ForbiddenError struct {
	Resource string
	ID       string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access to %s %s is forbidden", e.Resource, e.ID)
}

// ExtractionError reports that an externally parsed payload has no usable invoice shape.
type ExtractionError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExternalDependencyError wraps a failed or timed out call into persistence or the AI collaborator.
type ExternalDependencyError struct {
	Op  string // Operation that caused the error
	Err error  // Original error
}

func (e *ExternalDependencyError) Error() string {
	if e.Err == nil {
		return "external dependency error: " + e.Op
	}
	return "external dependency error: " + e.Op + ": " + e.Err.Error()
}

func (e *ExternalDependencyError) Unwrap() error {
	return e.Err
}
