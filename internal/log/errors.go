package log

import (
	"errors"

	"upreport/internal/core"
)

// ErrorType classifies err for the error_type field.
func ErrorType(err error) string {
	var (
		budgetErr *core.BudgetConfigError
		rangeErr  *core.InvalidRangeError
		recordErr *core.MalformedRecordError
	)
	switch {
	case errors.As(err, &budgetErr):
		return ErrorTypeBudget
	case errors.As(err, &rangeErr):
		return ErrorTypeRange
	case errors.As(err, &recordErr):
		return ErrorTypeRecord
	default:
		return ErrorTypeInternal
	}
}
