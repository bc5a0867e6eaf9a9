package core

import (
	"errors"
	"fmt"
)

// ValidationError is a user-fixable problem with a single field of a record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrNameRequired      = newValidationError("name", "name is required")
	ErrInvalidBudget     = newValidationError("monthlyBudgetCents", "budget must be 0 or more")
	ErrInvalidAmount     = newValidationError("amountCents", "amount must be greater than 0")
	ErrCategoryRequired  = newValidationError("categoryId", "category is required")
	ErrUnknownCategory   = newValidationError("categoryId", "category does not exist")
	ErrInvalidDate       = newValidationError("date", "invalid date, want YYYY-MM-DD")
	ErrInvalidDay        = newValidationError("dayOfMonth", "day must be between 1 and 31")
	ErrInvalidStartMonth = newValidationError("startMonth", "invalid start month, want YYYY-MM")
	ErrInvalidEndMonth   = newValidationError("endMonth", "invalid end month, want YYYY-MM")
	ErrEndBeforeStart    = newValidationError("endMonth", "end month must not be before start month")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrCategoryInUse is matched by both referential-integrity errors below.
var ErrCategoryInUse = errors.New("category is in use")

var (
	ErrCategoryHasExpenses  = &inUseError{msg: "cannot delete a category that has expenses, move the expenses first"}
	ErrCategoryHasRecurring = &inUseError{msg: "cannot delete a category used by recurring expenses, change them first"}
)

type inUseError struct{ msg string }

func (e *inUseError) Error() string        { return e.msg }
func (e *inUseError) Is(target error) bool { return target == ErrCategoryInUse }

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing record of the given kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

const (
	KindCategory  = "category"
	KindExpense   = "expense"
	KindRecurring = "recurring expense"
)
