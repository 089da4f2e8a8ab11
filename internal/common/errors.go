// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralInput marks a record missing a required field entirely.
	// Processing of that single record aborts; the batch continues and the
	// skip is counted, never silently dropped.
	ErrStructuralInput = errors.New("structurally invalid input record")

	// ErrInvalidConfig marks configuration that fails validation before a
	// stage runs.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StructuralError wraps ErrStructuralInput with the field that was absent.
func StructuralError(field string) error {
	return fmt.Errorf("%w: missing %s", ErrStructuralInput, field)
}

// IsStructural reports whether err belongs to the only error class that
// aborts processing of a record.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructuralInput)
}
