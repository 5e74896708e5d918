package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Common reconciliation errors
var (
	// ErrHeaderNotFound is returned when no plausible header row exists in
	// the transaction table.
	ErrHeaderNotFound = errors.New("header row not found in transaction table")

	// ErrUnsupportedFormat is returned for transaction files in a format we
	// cannot read (e.g., the legacy binary .xls container).
	ErrUnsupportedFormat = errors.New("unsupported transaction file format")

	// ErrEmptyTable is returned when the file parses but holds no rows.
	ErrEmptyTable = errors.New("transaction table is empty")
)

// MissingColumnsError is returned when required columns cannot be located by
// their header keywords. Missing names the logical fields, not the literal
// header strings, since the latter vary between exports.
type MissingColumnsError struct {
	Missing []string
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("reconcile: required columns not found: %s", strings.Join(e.Missing, ", "))
}

// ReconcileError wraps errors with context about the failed operation.
type ReconcileError struct {
	// Op is the operation that failed (e.g., "LoadTable").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ReconcileError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("reconcile: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("reconcile: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is chains.
func (e *ReconcileError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewReconcileError creates a ReconcileError with the specified operation and
// underlying error.
func NewReconcileError(op string, err error, details string) *ReconcileError {
	return &ReconcileError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
