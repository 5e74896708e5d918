// Package pdftext acquires raw text from PDF invoices.
//
// Direct text-layer extraction is attempted first. When a document yields
// less than a minimum amount of text it is treated as a scanned image and
// re-processed through an optical recognition engine. Two engines are
// supported: the local poppler/tesseract toolchain (default) and Google
// Cloud Vision document text detection.
//
// Required environment for the Cloud Vision engine:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package pdftext

import (
	"context"
)

// PageBreakMarker separates per-page text in acquisition output. Both the
// direct path and the OCR path use the same marker.
const PageBreakMarker = "\n--- PAGE BREAK ---\n"

// Acquirer obtains raw text from a PDF document.
type Acquirer interface {
	// AcquireText extracts the text content of a PDF, falling back to
	// optical recognition for scanned documents. Returns
	// ErrNoTextExtracted when both paths yield nothing.
	AcquireText(ctx context.Context, pdfBytes []byte) (string, error)
}

// Engine runs optical recognition over an entire PDF document and returns
// its text with pages joined by PageBreakMarker.
type Engine interface {
	Recognize(ctx context.Context, pdfBytes []byte) (string, error)
}

// Config holds the tunables for text acquisition.
type Config struct {
	// MinTextLength is the minimum number of characters (after trimming
	// whitespace) the direct text layer must yield before the document is
	// considered machine-readable. Below it, OCR is applied.
	MinTextLength int

	// DPI is the rasterization resolution for scanned pages.
	DPI int

	// Pdftoppm and Tesseract are binary names or absolute paths for the
	// local OCR toolchain.
	Pdftoppm  string
	Tesseract string

	// Lang is the tesseract language model, default "eng".
	Lang string
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinTextLength: 100,
		DPI:           300,
		Pdftoppm:      "pdftoppm",
		Tesseract:     "tesseract",
		Lang:          "eng",
	}
}
