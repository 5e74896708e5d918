package summary

import (
	"strings"

	"github.com/shopspring/decimal"

	"fleetinvoice/internal/numfmt"
	"fleetinvoice/pkg/models"
)

// Product line markers printed on the invoices. Classification is a literal
// text match, not a semantic one; the markers are case-sensitive.
const (
	markerLeasing        = "LINE 1"
	markerGeneralExpense = "LINE 2"
)

var one = decimal.NewFromInt(1)

// Parse turns a raw oracle field map into a validated InvoiceSummary. It
// never fails: every missing or unparseable field gets its documented
// default so one bad field does not sink the whole invoice.
//
// Defaults: VAT falls back to defaultVATPercent, net amount to zero, plate
// and brand to "N/A", the date to nil. The gross amount is always recomputed
// from net and VAT rather than trusted from the document.
func Parse(fields FieldMap, rawText string, defaultVATPercent float64) *models.InvoiceSummary {
	s := &models.InvoiceSummary{
		InvoiceNumber: strings.TrimSpace(fields.getString(FieldInvoiceNumber)),
		Plate:         fieldOrNA(fields, FieldPlate),
		VehicleBrand:  fieldOrNA(fields, FieldCarBrand),
		VATRate:       parseVATRate(fields, defaultVATPercent),
		NetAmount:     parseAmount(fields, FieldTotalRentNet),
		ProductCode:   ClassifyProduct(rawText),
	}

	s.GrossAmount = s.NetAmount.Mul(one.Add(s.VATRate)).Round(2)

	if dateStr := strings.TrimSpace(fields.getString(FieldInvoiceDate)); dateStr != "" {
		if t, ok := numfmt.ParseFlexibleDate(dateStr); ok {
			s.InvoiceDate = &t
		}
	}

	if conf, ok := fields.getNumber(FieldConfidence); ok {
		s.Confidence = &conf
	}

	return s
}

// ClassifyProduct maps the product line markers in the invoice text to a
// product code. Text without a recognized marker is Unknown, which the report
// carries through rather than guessing.
func ClassifyProduct(rawText string) models.ProductCode {
	switch {
	case strings.Contains(rawText, markerLeasing):
		return models.ProductLeasing
	case strings.Contains(rawText, markerGeneralExpense):
		return models.ProductGeneralExpense
	default:
		return models.ProductUnknown
	}
}

// fieldOrNA returns the trimmed string field or the "N/A" placeholder.
func fieldOrNA(fields FieldMap, key string) string {
	if v := strings.TrimSpace(fields.getString(key)); v != "" {
		return v
	}
	return models.NotAvailable
}

// parseVATRate reads the VAT percentage (a bare number like 20.0, or a
// string like "20", "20.0", "%20") and returns it as a rate. Anything
// unparseable falls back to the configured default.
func parseVATRate(fields FieldMap, defaultPercent float64) decimal.Decimal {
	hundred := decimal.NewFromInt(100)

	if pct, ok := fields.getNumber(FieldVATPercentage); ok {
		return decimal.NewFromFloat(pct).Div(hundred)
	}
	if str := strings.TrimSpace(fields.getString(FieldVATPercentage)); str != "" {
		str = strings.Trim(str, "% ")
		if d, err := numfmt.ParseLocaleDecimal(str); err == nil {
			return d.Div(hundred)
		}
	}
	return decimal.NewFromFloat(defaultPercent).Div(hundred)
}

// parseAmount reads a monetary field that may be a JSON number or a locale
// formatted string ("3.450.961,18"). Unparseable values become zero.
func parseAmount(fields FieldMap, key string) decimal.Decimal {
	if num, ok := fields.getNumber(key); ok {
		return decimal.NewFromFloat(num).Round(2)
	}
	if str := strings.TrimSpace(fields.getString(key)); str != "" {
		if d, err := numfmt.ParseLocaleDecimal(str); err == nil {
			return d
		}
	}
	return decimal.Zero
}
