package shared

import "fmt"

// DomainError represents a recoverable domain-level error. The Code is a
// stable machine-readable identifier, translated to an HTTP status by the
// interface layer.
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
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
)

// InvariantViolation is a non-recoverable internal error: the persisted
// state (or an attempted write against it) contradicts an invariant that
// should be structurally impossible to break, such as an update on an
// already-persisted revision row. It is never translated into a
// user-facing validation message and always aborts the enclosing
// transaction.
type InvariantViolation struct {
	Op     string
	Detail string
}

// Error implements the error interface
func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", v.Op, v.Detail)
}

// NewInvariantViolation creates a new invariant violation
func NewInvariantViolation(op, detail string) *InvariantViolation {
	return &InvariantViolation{Op: op, Detail: detail}
}
