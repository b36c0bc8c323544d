package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("resource not found")
	ErrLoanAlreadyExists      = errors.New("loan already exists")
	ErrLoanAlreadyPaid        = errors.New("loan is already paid off")
	ErrLoanHasPayments        = errors.New("loan has recorded payments")
	ErrPartialNotConfirmed    = errors.New("partial payment requires confirmation")
	ErrConcurrentModification = errors.New("loan was modified concurrently")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Field   string // set for validation errors only
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeLoanAlreadyExists      = "LOAN_ALREADY_EXISTS"
	ErrCodeLoanAlreadyPaid        = "LOAN_ALREADY_PAID"
	ErrCodeLoanHasPayments        = "LOAN_HAS_PAYMENTS"
	ErrCodePartialNotConfirmed    = "PARTIAL_PAYMENT_CONFIRMATION_REQUIRED"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// NewValidationError flags a single offending input field. The engine never
// clamps bad input; it reports the field and stops.
func NewValidationError(field, message string) *BusinessError {
	return &BusinessError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Field:   field,
		Err:     ErrValidation,
	}
}

func WrapNotFound(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s %s not found", entity, id),
		ErrNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapLoanAlreadyPaid(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyPaid,
		fmt.Sprintf("Loan with ID %s is already paid off, no further payments accepted", loanID),
		ErrLoanAlreadyPaid,
	)
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanHasPayments,
		fmt.Sprintf("Loan with ID %s has recorded payments and cannot be deleted", loanID),
		ErrLoanHasPayments,
	)
}

func WrapPartialNotConfirmed(required, amount string) *BusinessError {
	return NewBusinessError(
		ErrCodePartialNotConfirmed,
		fmt.Sprintf("Payment of %s is less than the required %s; resubmit with partial confirmation", amount, required),
		ErrPartialNotConfirmed,
	)
}

func WrapConcurrentModification(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("Loan with ID %s was modified by another request, retry the operation", loanID),
		ErrConcurrentModification,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
