// Package errors provides custom error types for the Hearth API.
// All service-layer errors use AppError so that handlers can map them to
// consistent responses and callers can surface messages verbatim in the UI.
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

// NewValidation creates a field-level validation error. The message is shown
// to the user unmodified, so it must be complete on its own.
func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// NewOverspending creates an overspending error. Kept distinct from plain
// validation because callers and tests treat the two differently.
func NewOverspending(message string) *AppError {
	return &AppError{Code: CodeOverspending, Message: message, StatusCode: http.StatusUnprocessableEntity}
}

// Stable error codes for the business-rule error kinds.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeOverspending = "OVERSPENDING"
)

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Month errors.
var (
	ErrMonthNotFound        = &AppError{Code: "MONTH_NOT_FOUND", Message: "Monthly overview not found", StatusCode: http.StatusNotFound}
	ErrIncomeSourceNotFound = &AppError{Code: "INCOME_SOURCE_NOT_FOUND", Message: "Income source not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound       = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrMasterBudgetNotFound = &AppError{Code: "MASTER_BUDGET_NOT_FOUND", Message: "Master budget not found", StatusCode: http.StatusNotFound}
	ErrExpenseNotFound      = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrOverrideReason       = &AppError{Code: "OVERRIDE_REASON_REQUIRED", Message: "An override reason is required when the amount differs from the master budget", StatusCode: http.StatusBadRequest}
)

// Goal errors.
var (
	ErrGoalNotFound    = &AppError{Code: "GOAL_NOT_FOUND", Message: "Financial goal not found", StatusCode: http.StatusNotFound}
	ErrSubGoalNotFound = &AppError{Code: "SUB_GOAL_NOT_FOUND", Message: "Sub-goal not found", StatusCode: http.StatusNotFound}
)

// Transfer errors.
var (
	ErrTransferNotFound   = &AppError{Code: "TRANSFER_NOT_FOUND", Message: "Transfer not found", StatusCode: http.StatusNotFound}
	ErrSameBudgetTransfer = &AppError{Code: "SAME_BUDGET_TRANSFER", Message: "Cannot transfer to the same budget", StatusCode: http.StatusBadRequest}
)

// Subscription errors.
var (
	ErrSubscriptionNotFound = &AppError{Code: "SUBSCRIPTION_NOT_FOUND", Message: "Subscription not found", StatusCode: http.StatusNotFound}
)
