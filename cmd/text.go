package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fleetinvoice/internal/config"
	"fleetinvoice/internal/logger"
	"fleetinvoice/internal/pdftext"
)

var textCmd = &cobra.Command{
	Use:   "text [pdf-file]",
	Short: "Extract text from an invoice PDF",
	Long: `Extract the text content of an invoice PDF.

The text layer is read directly when the document is machine-readable; scanned
documents fall back to OCR. The default OCR engine is the local
pdftoppm/tesseract toolchain; set OCR_ENGINE=vision to use Google Cloud Vision
instead.

Pages are separated by a "--- PAGE BREAK ---" marker in the output.`,
	Example: `  # Print extracted text to stdout
  fleetinvoice text invoice.pdf

  # Save to a file
  fleetinvoice text invoice.pdf -o extracted.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	textCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runText(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("text")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	pdfPath := args[0]

	pdfBytes, err := readPDFFile(pdfPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs) * time.Second)
	defer cancel()

	cfg := config.Load()
	acquirer, err := buildAcquirer(ctx, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	text, err := acquirer.AcquireText(ctx, pdfBytes)
	if err != nil {
		return handleAcquireError(err)
	}

	log.Info().
		Str("file", pdfPath).
		Int("text_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Text acquisition completed")

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	fmt.Println(text)
	return nil
}

// readPDFFile reads and sanity-checks an invoice PDF from disk.
func readPDFFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PDF file not found: %s", path)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return data, nil
}

// signalContext creates a context with the given timeout that is also
// canceled on SIGINT/SIGTERM.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleAcquireError turns acquisition failures into actionable messages.
func handleAcquireError(err error) error {
	switch {
	case errors.Is(err, pdftext.ErrEngineUnavailable):
		return fmt.Errorf("OCR engine unavailable. Install poppler-utils and tesseract-ocr, "+
			"or set OCR_ENGINE=vision to use Google Cloud Vision: %w", err)
	case errors.Is(err, pdftext.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file: %w", err)
	case errors.Is(err, pdftext.ErrNoTextExtracted):
		return fmt.Errorf("no readable text found in the document: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("processing timed out, try increasing --timeout")
	default:
		return fmt.Errorf("text acquisition failed: %w", err)
	}
}
