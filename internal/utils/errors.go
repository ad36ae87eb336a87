package utils

import "fmt"

// StoreError is a structured error carrying the operation context in
// which the underlying cause occurred.
type StoreError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error. Returns nil if cause is nil.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StoreError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Cause
}
