package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrSchemaMismatch signals that metadata and numeric row counts diverged
	// during row-aligned transforms. This is an invariant violation, not a
	// data-quality problem: the affected sheet is aborted.
	ErrSchemaMismatch = errors.New("metadata and numeric row counts diverged")

	// ErrDegenerateInput signals that a sheet has too little usable data for a
	// stage (zero rows/columns after cleaning, or fewer than two rows/columns
	// for PCA). The stage is skipped and the run continues.
	ErrDegenerateInput = errors.New("insufficient data for analysis")

	// ErrAnnotationMismatch signals that the annotation table does not line up
	// one-to-one with the matrix columns handed to the layout engine.
	ErrAnnotationMismatch = errors.New("annotation rows do not match matrix columns")

	// Lookup errors
	ErrNotFound      = errors.New("resource not found")
	ErrSheetNotFound = fmt.Errorf("%w: sheet", ErrNotFound)
)

// Error constructors with context

func NewSchemaMismatchError(metadataRows, numericRows int) error {
	return fmt.Errorf("%w: metadata has %d rows, matrix has %d", ErrSchemaMismatch, metadataRows, numericRows)
}

func NewDegenerateInputError(stage, reason string) error {
	return fmt.Errorf("%w: %s skipped (%s)", ErrDegenerateInput, stage, reason)
}

func NewAnnotationMismatchError(annotations, columns int) error {
	return fmt.Errorf("%w: %d annotations for %d columns", ErrAnnotationMismatch, annotations, columns)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers

func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

func IsDegenerateInput(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
