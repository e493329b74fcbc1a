package dto

import (
	"net/http"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Domain error codes, passed through unchanged from shared.DomainError
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeInsufficientStock   = shared.CodeInsufficientStock
	ErrCodeInvalidPayment      = shared.CodeInvalidPayment
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodePermissionDenied    = shared.CodePermissionDenied
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodePersistence         = shared.CodePersistence
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodeAlreadyExists       = shared.CodeAlreadyExists
	ErrCodeFeatureDisabled     = shared.CodeFeatureDisabled
)

// Transport error codes produced by the HTTP layer itself
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when the bearer token is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeRateLimited is used when the client exceeded its request budget
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already processed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeInvalidPayment:      http.StatusUnprocessableEntity,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodePermissionDenied:    http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodePersistence:         http.StatusInternalServerError,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeFeatureDisabled:     http.StatusServiceUnavailable,

	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeInternal:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
