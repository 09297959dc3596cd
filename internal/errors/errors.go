// Package errors provides the application error taxonomy.
// Every failure that crosses the service boundary is an *AppError so the
// presentation layer can render it without inspecting internals.
package errors

import (
	"fmt"
	"net/http"
)

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

// Is matches on code, so a message-customised copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

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

// Validation returns a ValidationError with a formatted message.
func Validation(format string, args ...any) *AppError {
	return WithMessage(ErrValidation, fmt.Sprintf(format, args...))
}

// Denied returns a PermissionDenied error with a formatted message.
func Denied(format string, args ...any) *AppError {
	return WithMessage(ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// Op names the store operation that failed.
type Op string

const (
	OpCreate Op = "create"
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Store wraps a persistence failure. The message keeps the CRUD context so a
// user can tell what did not happen ("Could not create sale").
func Store(op Op, resource string, err error) *AppError {
	return &AppError{
		Code:       ErrStore.Code,
		Message:    fmt.Sprintf("Could not %s %s", op, resource),
		StatusCode: ErrStore.StatusCode,
		Internal:   err,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrPermissionDenied   = &AppError{Code: "PERMISSION_DENIED", Message: "Permission denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrStore          = &AppError{Code: "STORE_ERROR", Message: "Operation failed", StatusCode: http.StatusInternalServerError}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "Username already exists", StatusCode: http.StatusConflict}
)

// Shift errors.
var (
	ErrShiftNotFound    = &AppError{Code: "SHIFT_NOT_FOUND", Message: "Shift not found", StatusCode: http.StatusNotFound}
	ErrShiftAlreadyOpen = &AppError{Code: "SHIFT_ALREADY_OPEN", Message: "Shift is already open", StatusCode: http.StatusConflict}
	ErrShiftClosed      = &AppError{Code: "SHIFT_CLOSED", Message: "Shift is closed", StatusCode: http.StatusConflict}
	ErrNoOpenShift      = &AppError{Code: "NO_OPEN_SHIFT", Message: "No shift is open", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Master data errors.
var (
	ErrExpenseHeadNotFound  = &AppError{Code: "EXPENSE_HEAD_NOT_FOUND", Message: "Expense head not found", StatusCode: http.StatusNotFound}
	ErrExpenseHeadInactive  = &AppError{Code: "EXPENSE_HEAD_INACTIVE", Message: "Expense head is disabled", StatusCode: http.StatusBadRequest}
	ErrDuplicateExpenseHead = &AppError{Code: "DUPLICATE_EXPENSE_HEAD", Message: "Expense head already exists", StatusCode: http.StatusConflict}
	ErrVendorNotFound       = &AppError{Code: "VENDOR_NOT_FOUND", Message: "Vendor not found", StatusCode: http.StatusNotFound}
	ErrVendorInactive       = &AppError{Code: "VENDOR_INACTIVE", Message: "Vendor is disabled", StatusCode: http.StatusBadRequest}
)
