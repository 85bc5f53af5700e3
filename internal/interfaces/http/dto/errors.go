package dto

import (
	"errors"
	"net/http"

	"github.com/pharmacy/backend/internal/domain/shared"
)

// Transport-level error codes, for failures that never reach the domain
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Business rule violations answer 422 so clients can tell a rule rejection
// from a malformed request.
var errorCodeHTTPStatus = map[string]int{
	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":  http.StatusConflict,
	"DUPLICATE_BATCH": http.StatusConflict,
	"DUPLICATE_SLUG":  http.StatusConflict,

	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":  http.StatusUnprocessableEntity,
	"EMPTY_CART":          http.StatusUnprocessableEntity,
	"EMPTY_ORDER":         http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE": http.StatusUnprocessableEntity,

	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_QUANTITY":     http.StatusBadRequest,
	"INVALID_AMOUNT":       http.StatusBadRequest,
	"INVALID_FILE":         http.StatusBadRequest,
	"INVALID_REASON":       http.StatusBadRequest,
	"INVALID_EMAIL":        http.StatusBadRequest,
	"INVALID_NAME":         http.StatusBadRequest,
	"INVALID_PRICE":        http.StatusBadRequest,
	"INVALID_CATEGORY":     http.StatusBadRequest,
	"INVALID_BATCH_NUMBER": http.StatusBadRequest,
	"INVALID_ROLE":         http.StatusBadRequest,
	"INVALID_EVENT":        http.StatusBadRequest,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for an error code.
// Unknown codes answer 500.
func HTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts any error into a response and its HTTP status. Domain
// errors keep their code and message; everything else is an opaque 500.
func FromError(err error) (Response, int) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return NewErrorResponse(domainErr.Code, domainErr.Message), HTTPStatus(domainErr.Code)
	}
	return NewErrorResponse(ErrCodeInternal, "An internal error occurred"), http.StatusInternalServerError
}
