package summary

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrAuthFailed is returned when the extraction backend rejects the
	// configured credentials. The batch stops calling the oracle after the
	// first occurrence since every subsequent call would fail the same way.
	ErrAuthFailed = errors.New("extraction backend rejected credentials")

	// ErrRequestFailed is returned for transport-level failures: network
	// errors, timeouts, and non-auth API errors.
	ErrRequestFailed = errors.New("extraction request failed")

	// ErrMalformedResponse is returned when the backend answered but the
	// payload could not be interpreted as an invoice field map.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrMissingAPIKey is returned when no OpenAI API key is configured.
	ErrMissingAPIKey = errors.New("missing OpenAI API key")
)

// ExtractionError wraps errors with context about the failed extraction.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractFields").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("summary: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("summary: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is chains.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates an ExtractionError with the specified operation
// and underlying error.
func NewExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
