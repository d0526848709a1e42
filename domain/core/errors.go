package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Table construction errors
	ErrDegenerateTable            = errors.New("degenerate contingency table")
	ErrInsufficientDimensionality = errors.New("insufficient dimensionality for independence test")
	ErrMissingAttribute           = errors.New("attribute missing from record")
)

// Error constructors with context
func NewDegenerateTableError(rowVar, colVar VariableKey, reason string) error {
	return fmt.Errorf("%w: %s x %s: %s", ErrDegenerateTable, rowVar, colVar, reason)
}

func NewInsufficientDimensionalityError(rowVar, colVar VariableKey, rows, cols int) error {
	return fmt.Errorf("%w: %s x %s is a %dx%d table (dof=0)", ErrInsufficientDimensionality, rowVar, colVar, rows, cols)
}

func NewMissingAttributeError(varKey VariableKey, recordIndex int) error {
	return fmt.Errorf("%w: %q not present in record %d", ErrMissingAttribute, varKey, recordIndex)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsDegenerateTable(err error) bool {
	return errors.Is(err, ErrDegenerateTable)
}

func IsInsufficientDimensionality(err error) bool {
	return errors.Is(err, ErrInsufficientDimensionality)
}

func IsMissingAttribute(err error) bool {
	return errors.Is(err, ErrMissingAttribute)
}

// IsTableError reports whether err is one of the contingency-table input failures.
func IsTableError(err error) bool {
	return IsDegenerateTable(err) || IsInsufficientDimensionality(err) || IsMissingAttribute(err)
}
