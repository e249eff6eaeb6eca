package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError. Every failure surfaced to callers
// belongs to exactly one kind.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindInternal   ErrorKind = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind         `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind and code.
// A target without a code matches any error of its kind.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// WithMessage returns a copy of the error carrying a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying per-field messages.
func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_INPUT",
		Message: message,
		Fields:  fields,
	}
}

// NewFieldError is a validation error for a single field.
func NewFieldError(field, message string) *DomainError {
	return NewValidationError(message, map[string]string{field: message})
}

// NewNotFoundError reports a missing entity, e.g. NewNotFoundError("user", 7).
func NewNotFoundError(entity string, id uint64) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %d not found", entity, id),
	}
}

// NewConflictError creates a conflict error with the given code.
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// KindOf returns the kind of err, KindInternal for anything that is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors. Use errors.Is against these; kinds match regardless of message.
var (
	ErrNotFound      = NewDomainError(KindNotFound, "", "Resource not found")
	ErrInvalidInput  = NewDomainError(KindValidation, "", "Invalid input provided")
	ErrConflict      = NewDomainError(KindConflict, "", "Resource conflict")
	ErrInUse         = NewDomainError(KindConflict, "IN_USE", "Resource is still referenced")
	ErrDuplicateLink = NewDomainError(KindConflict, "PRODUCT_ALREADY_IN_ORDER", "Product already in order")
	ErrMissingLink   = NewDomainError(KindConflict, "PRODUCT_NOT_IN_ORDER", "Product not in order")
)
