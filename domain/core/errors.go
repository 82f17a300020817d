package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Generation errors
	ErrGeneration       = errors.New("random source unavailable")
	ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", ErrGeneration)
	ErrSeedOutOfRange   = fmt.Errorf("%w: seed out of range", ErrGeneration)
	ErrInvalidRowCount  = fmt.Errorf("%w: row count must be positive", ErrGeneration)

	// Table errors
	ErrShapeMismatch = errors.New("columns have different lengths")
	ErrColumnOrder   = errors.New("unexpected column order")

	// Determinism errors
	ErrHashMismatch = errors.New("hash mismatch")

	// Ledger errors
	ErrRunNotFound = errors.New("run not found")
)

// NewValidationError reports a field that failed validation
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}
