// Package errors provides custom error types for the MillTrack API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrInvalidRole    = &AppError{Code: "INVALID_ROLE", Message: "Unknown user role", StatusCode: http.StatusBadRequest}
)

// Product errors.
var (
	ErrProductNotFound = &AppError{Code: "PRODUCT_NOT_FOUND", Message: "Product not found", StatusCode: http.StatusNotFound}
	ErrDuplicateSKU    = &AppError{Code: "DUPLICATE_SKU", Message: "A product with this SKU already exists", StatusCode: http.StatusConflict}
)

// Purchase errors.
var (
	ErrPurchaseNotFound    = &AppError{Code: "PURCHASE_NOT_FOUND", Message: "Purchase order not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePurchaseNo = &AppError{Code: "DUPLICATE_PURCHASE_NUMBER", Message: "A purchase order with this number already exists", StatusCode: http.StatusConflict}
	ErrPurchaseNotEditable = &AppError{Code: "PURCHASE_NOT_EDITABLE", Message: "Received purchase orders cannot be modified", StatusCode: http.StatusBadRequest}
)

// Sales invoice errors.
var (
	ErrInvoiceNotFound    = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Sales invoice not found", StatusCode: http.StatusNotFound}
	ErrDuplicateInvoiceNo = &AppError{Code: "DUPLICATE_INVOICE_NUMBER", Message: "An invoice with this number already exists", StatusCode: http.StatusConflict}
	ErrInsufficientStock  = &AppError{Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock for this sale", StatusCode: http.StatusBadRequest}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
)

// Stock movement and gate errors.
var (
	ErrMovementNotFound    = &AppError{Code: "MOVEMENT_NOT_FOUND", Message: "Stock movement not found", StatusCode: http.StatusNotFound}
	ErrInvalidMovementType = &AppError{Code: "INVALID_MOVEMENT_TYPE", Message: "Unsupported stock movement type", StatusCode: http.StatusBadRequest}
	ErrGateEntryNotFound   = &AppError{Code: "GATE_ENTRY_NOT_FOUND", Message: "Gate entry not found", StatusCode: http.StatusNotFound}
)
