package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fleetinvoice/internal/config"
	"fleetinvoice/internal/logger"
	"fleetinvoice/internal/summary"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract a structured summary from an invoice PDF",
	Long: `Extract structured invoice data from a PDF and print it as JSON.

The document text is acquired (with OCR fallback for scans) and sent to the
extraction backend. The default backend is OpenAI and requires OPENAI_API_KEY;
set EXTRACTOR=documentai to use a Google Document AI invoice processor.

Fields the backend cannot find get documented defaults: the VAT rate falls
back to VAT_PERCENT (20 by default), amounts to zero, plate and brand to
"N/A".`,
	Example: `  # Extract a summary to stdout
  fleetinvoice extract invoice.pdf

  # Save the summary to a file
  fleetinvoice extract invoice.pdf -o summary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// extractOutput is the JSON shape printed by the extract command.
type extractOutput struct {
	InvoiceNumber string   `json:"invoice_number"`
	InvoiceDate   string   `json:"invoice_date,omitempty"`
	Plate         string   `json:"plate"`
	VehicleBrand  string   `json:"car_brand"`
	VATRate       string   `json:"vat_rate"`
	NetAmount     string   `json:"total_rent_net"`
	GrossAmount   string   `json:"gross_amount"`
	ProductCode   string   `json:"product_code"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

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
	extractor, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	text, err := acquirer.AcquireText(ctx, pdfBytes)
	if err != nil {
		return handleAcquireError(err)
	}

	fields, err := extractor.ExtractFields(ctx, summary.Document{Text: text, PDF: pdfBytes})
	if err != nil {
		return handleExtractionError(err)
	}

	s := summary.Parse(fields, text, cfg.VATPercent)

	log.Info().
		Str("file", pdfPath).
		Str("invoice_number", s.InvoiceNumber).
		Str("product_code", string(s.ProductCode)).
		Msg("Extraction completed")

	out := extractOutput{
		InvoiceNumber: s.InvoiceNumber,
		Plate:         s.Plate,
		VehicleBrand:  s.VehicleBrand,
		VATRate:       s.VATRate.String(),
		NetAmount:     s.NetAmount.StringFixed(2),
		GrossAmount:   s.GrossAmount.StringFixed(2),
		ProductCode:   string(s.ProductCode),
		Confidence:    s.Confidence,
	}
	if s.InvoiceDate != nil {
		out.InvoiceDate = s.InvoiceDate.Format("2006-01-02")
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}

// handleExtractionError turns oracle failures into actionable messages.
func handleExtractionError(err error) error {
	switch {
	case errors.Is(err, summary.ErrMissingAPIKey):
		return fmt.Errorf("OPENAI_API_KEY is not set. Export it or add it to your .env file")
	case errors.Is(err, summary.ErrAuthFailed):
		return fmt.Errorf("extraction backend rejected the configured credentials: %w", err)
	case errors.Is(err, summary.ErrMalformedResponse):
		return fmt.Errorf("extraction backend returned an unusable response, try again: %w", err)
	default:
		return fmt.Errorf("extraction failed: %w", err)
	}
}
