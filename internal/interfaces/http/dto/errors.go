package dto

import "net/http"

// Error codes raised outside the domain layer
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Request shape problems map to 400, missing resources to 404, policy
// refusals to 403, write conflicts to 409 and lifecycle or balance
// refusals to 422.
var errorCodeHTTPStatus = map[string]int{
	// malformed or self-contradictory request payloads
	ErrCodeInvalidInput:     http.StatusBadRequest,
	"INVALID_NAME":          http.StatusBadRequest,
	"INVALID_PRICE":         http.StatusBadRequest,
	"INVALID_AMOUNT":        http.StatusBadRequest,
	"INVALID_PERCENTAGE":    http.StatusBadRequest,
	"INVALID_CATEGORY":      http.StatusBadRequest,
	"INVALID_WINDOW":        http.StatusBadRequest,
	"INVALID_ADDRESSEE":     http.StatusBadRequest,
	"INVALID_PARTY":         http.StatusBadRequest,
	"INVALID_TRANSFER":      http.StatusBadRequest,
	"INVALID_USER_TYPE":     http.StatusBadRequest,
	"INVALID_BALANCE":       http.StatusBadRequest,
	"DUPLICATE_PRODUCT":     http.StatusBadRequest,
	"DUPLICATE_CONTAINER":   http.StatusBadRequest,
	"UNRESOLVED_DEPENDENCY": http.StatusBadRequest,
	"PRICE_MISMATCH":        http.StatusBadRequest,
	"TOTAL_MISMATCH":        http.StatusBadRequest,
	"CURRENCY_MISMATCH":     http.StatusBadRequest,
	"EMPTY_TRANSACTION":     http.StatusBadRequest,
	"EMPTY_SUB_TRANSACTION": http.StatusBadRequest,
	"IMAGE_NOT_UPLOADED":    http.StatusBadRequest,

	// pin violations: the purchase references catalog state that does
	// not exist under the pinned revision
	"POS_NOT_FOUND":            http.StatusBadRequest,
	"REVISION_DELETED":         http.StatusBadRequest,
	"CONTAINER_NOT_IN_POS":     http.StatusBadRequest,
	"PRODUCT_NOT_IN_CONTAINER": http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,

	// concurrent write lost or a uniqueness clash
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ROW_INVOICED":         http.StatusConflict,

	// the request is well-formed but the ledger or lifecycle state
	// refuses it
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE": http.StatusUnprocessableEntity,
	"EMPTY_INVOICE":        http.StatusUnprocessableEntity,
	"ENTITY_DELETED":       http.StatusUnprocessableEntity,
	"NO_DRAFT":             http.StatusUnprocessableEntity,
	"ALREADY_DELETED":      http.StatusUnprocessableEntity,
	"NOT_DELETED":          http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus resolves an error code to its HTTP status, defaulting
// to 500 for anything unmapped
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
