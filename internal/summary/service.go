// Package summary extracts structured invoice summaries from raw document text.
//
// The extraction oracle is pluggable: the default backend sends the text to an
// OpenAI chat model constrained to JSON output, and a Google Document AI
// backend can be selected with EXTRACTOR=documentai for environments that
// already run the invoice parser processor there.
//
// Extractor output is deliberately loose (FieldMap) because language models do
// not honor schemas reliably: fields arrive as strings, numbers, or null in
// the same position across calls. Parse owns turning that into a validated
// models.InvoiceSummary with documented defaults for every missing field.
package summary

import (
	"context"
	"encoding/json"
)

// Field keys the extraction backends populate. Parse reads these and nothing
// else; unknown keys in the oracle response are ignored.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldVATPercentage = "vat_percentage"
	FieldTotalRentNet  = "total_rent_net"
	FieldPlate         = "plate"
	FieldCarBrand      = "car_brand"
	FieldConfidence    = "confidence"
)

// Document carries both representations of an invoice so each backend can use
// the one it needs: the OpenAI extractor reads Text, Document AI reprocesses
// the original PDF bytes.
type Document struct {
	Text string
	PDF  []byte
}

// Extractor defines the interface for invoice field extraction backends.
type Extractor interface {
	// ExtractFields returns the raw field map for one invoice document.
	// Missing fields are absent or null in the map; Parse applies defaults.
	ExtractFields(ctx context.Context, doc Document) (FieldMap, error)
}

// FieldMap is the untyped oracle response. Accessors tolerate the type drift
// seen in practice (numbers as strings, integers where floats are expected).
type FieldMap map[string]interface{}

// getString safely extracts a string value, returning "" for missing, null,
// or non-string values.
func (m FieldMap) getString(key string) string {
	if value, exists := m[key]; exists && value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// getNumber extracts a numeric value that may arrive as a JSON number, a
// json.Number, an integer, or a numeric string.
func (m FieldMap) getNumber(key string) (float64, bool) {
	value, exists := m[key]
	if !exists || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
