package shared

import "strings"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ValidationErrors collects every violation found while validating a single
// input in one pass, so callers see the complete list instead of fixing
// problems one round trip at a time.
type ValidationErrors struct {
	Violations []*DomainError `json:"violations"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation
func (e *ValidationErrors) Add(code, message string) {
	e.Violations = append(e.Violations, NewDomainError(code, message))
}

// HasViolations returns true if at least one violation was recorded
func (e *ValidationErrors) HasViolations() bool {
	return len(e.Violations) > 0
}

// AsError returns the collected violations as an error, or nil when empty
func (e *ValidationErrors) AsError() error {
	if e.HasViolations() {
		return e
	}
	return nil
}
