// Package domain holds the product-service entities and the error taxonomy
// shared by handlers, jobs and repositories.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for bad input rejected before any side effect.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks retryable failures (timeouts, lock conflicts).
	ErrTransient = errors.New("transient error")

	// ErrTerminal marks non-retryable business rule violations.
	ErrTerminal = errors.New("terminal error")

	// ErrInsufficientStock is returned when a reservation would drive
	// available stock negative. It wraps ErrTerminal: retrying cannot help.
	ErrInsufficientStock = fmt.Errorf("insufficient stock: %w", ErrTerminal)
)

// IsRetryable reports whether the retry loop should attempt the operation
// again. Validation and terminal failures never are; everything else is
// assumed transient-looking.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrTerminal) {
		return false
	}
	return true
}
