package pdftext

import (
	"errors"
	"fmt"
)

// Common text acquisition errors
var (
	// ErrNoTextExtracted is returned when both the direct text layer and
	// optical recognition yielded nothing. The document is unprocessable.
	ErrNoTextExtracted = errors.New("no text could be extracted from the document")

	// ErrEngineUnavailable is returned when the optical recognition
	// toolchain is not installed in the runtime environment. This is an
	// environment misconfiguration, not a per-document failure.
	ErrEngineUnavailable = errors.New("OCR engine is not available in this environment")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")
)

// AcquireError wraps errors with context about the acquisition failure.
type AcquireError struct {
	// Op is the operation that failed (e.g., "AcquireText", "Recognize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AcquireError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdftext: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdftext: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AcquireError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *AcquireError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAcquireError creates a new AcquireError.
func NewAcquireError(op string, err error, details string) *AcquireError {
	return &AcquireError{Op: op, Err: err, Details: details}
}
