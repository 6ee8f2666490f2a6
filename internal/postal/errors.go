package postal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the lookup service has no address for a CEP.
var ErrNotFound = errors.New("cep not found")

// Category is the normalized failure taxonomy for CEP lookups.
type Category string

const (
	// CategoryTimeout indicates the lookup service took too long to respond
	CategoryTimeout Category = "timeout"

	// CategoryBadData indicates the lookup service returned malformed data
	CategoryBadData Category = "bad_data"

	// CategoryOutage indicates the lookup service is unavailable
	CategoryOutage Category = "provider_outage"

	// CategoryRateLimited indicates too many requests
	CategoryRateLimited Category = "rate_limited"

	// CategoryInvalidInput indicates the CEP was rejected before or by the service
	CategoryInvalidInput Category = "invalid_input"

	// CategoryInternal indicates an unexpected internal error
	CategoryInternal Category = "internal"
)

// Error wraps lookup failures with a normalized category.
type Error struct {
	Category   Category
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("cep lookup [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("cep lookup [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized lookup error.
func NewError(category Category, message string, underlying error) *Error {
	retryable := category == CategoryTimeout ||
		category == CategoryOutage ||
		category == CategoryRateLimited

	return &Error{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether a failed lookup is worth trying again later.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error.
func GetCategory(err error) Category {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryInternal
}
