package summary

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"fleetinvoice/internal/logger"
)

const (
	// MaxDocumentSizeBytes is the maximum document size for synchronous
	// Document AI processing (20MB).
	MaxDocumentSizeBytes = 20 * 1024 * 1024
)

// DocumentAIConfig holds configuration for the Google Document AI backend.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the invoice parser processor ID.
	ProcessorID string

	// Timeout is the maximum time to wait for processing.
	Timeout time.Duration
}

// DocumentAIExtractor implements Extractor using the Document AI invoice
// parser. Selected with EXTRACTOR=documentai; unlike the OpenAI backend it
// processes the original PDF bytes instead of the acquired text, so plate and
// brand fields are usually absent and fall back to their defaults in Parse.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIExtractor creates the extractor with credentials from the
// environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
// Requires: GOOGLE_PROJECT_ID, GOOGLE_PROCESSOR_ID
// Optional: GOOGLE_LOCATION (defaults to "us")
func NewDocumentAIExtractor(ctx context.Context) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	config := DocumentAIConfig{
		ProjectID:   os.Getenv("GOOGLE_PROJECT_ID"),
		Location:    os.Getenv("GOOGLE_LOCATION"),
		ProcessorID: os.Getenv("GOOGLE_PROCESSOR_ID"),
		Timeout:     60 * time.Second,
	}

	if config.ProjectID == "" {
		return nil, NewExtractionError(op, ErrAuthFailed, "GOOGLE_PROJECT_ID is required")
	}
	if config.ProcessorID == "" {
		return nil, NewExtractionError(op, ErrRequestFailed, "GOOGLE_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, NewExtractionError(op, ErrAuthFailed, fmt.Sprintf("failed to create Document AI client: %v", err))
	}

	return NewDocumentAIExtractorWithClient(client, config), nil
}

// NewDocumentAIExtractorWithClient creates the extractor with an explicit
// client and config (for testing).
func NewDocumentAIExtractorWithClient(client *documentai.DocumentProcessorClient, config DocumentAIConfig) *DocumentAIExtractor {
	return &DocumentAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("summary-documentai"),
	}
}

// ExtractFields submits the PDF to the invoice parser processor and maps the
// returned entities onto the shared field keys.
func (e *DocumentAIExtractor) ExtractFields(ctx context.Context, doc Document) (FieldMap, error) {
	const op = "ExtractFields"

	if len(doc.PDF) == 0 {
		return nil, NewExtractionError(op, ErrRequestFailed, "no PDF bytes to process")
	}
	if len(doc.PDF) > MaxDocumentSizeBytes {
		return nil, NewExtractionError(op, ErrRequestFailed, fmt.Sprintf("file size %d exceeds Document AI limit", len(doc.PDF)))
	}

	processCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			e.config.ProjectID, e.config.Location, e.config.ProcessorID),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  doc.PDF,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := e.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, e.classifyAPIError(op, err)
	}
	if resp.Document == nil {
		return nil, NewExtractionError(op, ErrMalformedResponse, "no document in response")
	}

	return e.entitiesToFields(resp.Document), nil
}

// entitiesToFields maps Document AI invoice entities to the field keys Parse
// reads. Net and tax amounts are combined into a VAT percentage when both are
// present since the processor does not report the rate directly.
func (e *DocumentAIExtractor) entitiesToFields(doc *documentaipb.Document) FieldMap {
	fields := make(FieldMap)
	var netAmount, taxAmount float64
	var haveNet, haveTax bool

	for _, entity := range doc.Entities {
		value := strings.TrimSpace(entity.MentionText)

		e.log.Debug().
			Str("entity_type", entity.Type).
			Str("value", value).
			Float32("confidence", entity.Confidence).
			Msg("Processing Document AI entity")

		switch entity.Type {
		case "invoice_id", "invoice_number":
			fields[FieldInvoiceNumber] = value
		case "invoice_date":
			if date, ok := normalizedDate(entity); ok {
				fields[FieldInvoiceDate] = date
			} else if value != "" {
				fields[FieldInvoiceDate] = value
			}
		case "net_amount", "subtotal_amount":
			if amount, ok := normalizedMoney(entity); ok {
				netAmount, haveNet = amount, true
				fields[FieldTotalRentNet] = amount
			} else if value != "" {
				fields[FieldTotalRentNet] = value
			}
		case "total_tax_amount", "vat_amount":
			if amount, ok := normalizedMoney(entity); ok {
				taxAmount, haveTax = amount, true
			}
		case "vat/tax_rate":
			if value != "" {
				fields[FieldVATPercentage] = value
			}
		}
	}

	if _, present := fields[FieldVATPercentage]; !present && haveNet && haveTax && netAmount > 0 {
		fields[FieldVATPercentage] = taxAmount / netAmount * 100
	}

	e.log.Info().
		Str("invoice_number", fields.getString(FieldInvoiceNumber)).
		Int("fields", len(fields)).
		Msg("Document AI extraction completed")

	return fields
}

// normalizedDate returns the entity's normalized date value as YYYY-MM-DD.
func normalizedDate(entity *documentaipb.Document_Entity) (string, bool) {
	if entity.NormalizedValue == nil {
		return "", false
	}
	dv := entity.NormalizedValue.GetDateValue()
	if dv == nil {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", dv.Year, dv.Month, dv.Day), true
}

// normalizedMoney returns the entity's normalized money value in major units.
func normalizedMoney(entity *documentaipb.Document_Entity) (float64, bool) {
	if entity.NormalizedValue == nil {
		return 0, false
	}
	mv := entity.NormalizedValue.GetMoneyValue()
	if mv == nil {
		return 0, false
	}
	return float64(mv.Units) + float64(mv.Nanos)/1e9, true
}

// classifyAPIError maps gRPC failures onto the package sentinels.
func (e *DocumentAIExtractor) classifyAPIError(op string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"), strings.Contains(errStr, "UNAUTHENTICATED"):
		return NewExtractionError(op, ErrAuthFailed, "Document AI rejected credentials")
	default:
		return NewExtractionError(op, ErrRequestFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (e *DocumentAIExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
