package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidPayment      = "INVALID_PAYMENT"
	CodeInvalidState        = "INVALID_STATE"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeFeatureDisabled     = "FEATURE_DISABLED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers compare against the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error carrying an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
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
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidPayment      = NewDomainError(CodeInvalidPayment, "Invalid payment amount")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrPermissionDenied    = NewDomainError(CodePermissionDenied, "Role is not allowed to perform this action")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrPersistence         = NewDomainError(CodePersistence, "Failed to persist changes")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrFeatureDisabled     = NewDomainError(CodeFeatureDisabled, "Feature is not configured")
)

// NewValidationError creates a VALIDATION_ERROR with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error naming the missing resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// NewInvalidStateError creates an INVALID_STATE error with a specific message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewInsufficientStockError names the item and the quantity that is actually available
func NewInsufficientStockError(itemName string, available, requested int) *DomainError {
	return &DomainError{
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", itemName, available, requested),
		Details: map[string]any{
			"item":      itemName,
			"available": available,
			"requested": requested,
		},
	}
}

// NewPersistenceError wraps a storage failure so callers see PERSISTENCE_ERROR
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: "failed to " + op,
		cause:   cause,
	}
}

// AsDomainError extracts a *DomainError from err
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
