package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"fleetinvoice/internal/logger"
)

// OpenAIConfig configures the OpenAI extraction backend.
type OpenAIConfig struct {
	// Model is the chat model name (e.g., "gpt-4o").
	Model string

	// MaxPromptLen caps how much invoice text is embedded in the prompt.
	// Fleet invoices carry the relevant fields on the first page, so the
	// tail of long documents is dead weight in the context window.
	MaxPromptLen int
}

// DefaultOpenAIConfig returns an OpenAIConfig with sensible defaults.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:        "gpt-4o",
		MaxPromptLen: 4000,
	}
}

// OpenAIExtractor implements Extractor using an OpenAI chat model constrained
// to JSON-object output at temperature zero.
type OpenAIExtractor struct {
	client *openai.Client
	config OpenAIConfig
	log    zerolog.Logger
}

// NewOpenAIExtractor creates the extractor with the given API key.
func NewOpenAIExtractor(apiKey string, config OpenAIConfig) (*OpenAIExtractor, error) {
	const op = "NewOpenAIExtractor"

	if apiKey == "" {
		return nil, NewExtractionError(op, ErrMissingAPIKey, "OPENAI_API_KEY environment variable is required")
	}
	if config.Model == "" {
		config.Model = DefaultOpenAIConfig().Model
	}
	if config.MaxPromptLen <= 0 {
		config.MaxPromptLen = DefaultOpenAIConfig().MaxPromptLen
	}

	return NewOpenAIExtractorWithClient(openai.NewClient(apiKey), config), nil
}

// NewOpenAIExtractorWithClient creates the extractor with an explicit client
// (for testing).
func NewOpenAIExtractorWithClient(client *openai.Client, config OpenAIConfig) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("summary-openai"),
	}
}

const systemPrompt = `You extract structured data from fleet leasing invoices.
Return ONLY a valid JSON object, no prose before or after it.
Use null for any field you cannot find in the text.`

// ExtractFields sends the invoice text to the chat model and parses the JSON
// object it returns. The response is decoded into an untyped map because the
// model occasionally returns numbers as strings and vice versa; Parse handles
// the normalization.
func (e *OpenAIExtractor) ExtractFields(ctx context.Context, doc Document) (FieldMap, error) {
	const op = "ExtractFields"

	prompt := e.buildPrompt(doc.Text)

	e.log.Debug().
		Int("prompt_length", len(prompt)).
		Str("model", e.config.Model).
		Msg("Sending extraction request")

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, e.classifyAPIError(op, err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewExtractionError(op, ErrMalformedResponse, "no response choices")
	}

	content := resp.Choices[0].Message.Content
	e.log.Debug().
		Str("response", content).
		Msg("Received extraction response")

	var fields FieldMap
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, NewExtractionError(op, ErrMalformedResponse, fmt.Sprintf("invalid JSON: %v", err))
	}

	e.log.Info().
		Str("invoice_number", fields.getString(FieldInvoiceNumber)).
		Str("model", e.config.Model).
		Msg("Extraction completed")

	return fields, nil
}

// buildPrompt creates the user prompt with the (truncated) invoice text and
// the exact field contract Parse depends on.
func (e *OpenAIExtractor) buildPrompt(text string) string {
	if len(text) > e.config.MaxPromptLen {
		text = text[:e.config.MaxPromptLen]
	}

	var b strings.Builder
	b.WriteString("Extract the following fields from this fleet leasing invoice text:\n\n")
	b.WriteString("{\n")
	b.WriteString(`  "invoice_number": "the invoice number, e.g. PFS2025000001235",` + "\n")
	b.WriteString(`  "invoice_date": "YYYY-MM-DD (reformat whatever format the document uses)",` + "\n")
	b.WriteString(`  "vat_percentage": VAT rate as a bare number, e.g. 20.0 for 20%,` + "\n")
	b.WriteString(`  "total_rent_net": total net rent amount as a number,` + "\n")
	b.WriteString(`  "plate": "vehicle license plate",` + "\n")
	b.WriteString(`  "car_brand": "vehicle brand and model",` + "\n")
	b.WriteString(`  "confidence": your confidence in the extraction from 0 to 1` + "\n")
	b.WriteString("}\n\n")
	b.WriteString("Use null for fields not present in the text. Amounts may use dot as\n")
	b.WriteString("thousands separator and comma as decimal separator.\n\n")
	b.WriteString("Invoice text:\n")
	b.WriteString(text)
	return b.String()
}

// classifyAPIError maps OpenAI client errors onto the package sentinels so
// callers can tell credential problems from transient transport failures.
func (e *OpenAIExtractor) classifyAPIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewExtractionError(op, ErrAuthFailed, apiErr.Message)
		default:
			return NewExtractionError(op, ErrRequestFailed, fmt.Sprintf("API status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
	}
	return NewExtractionError(op, ErrRequestFailed, err.Error())
}
