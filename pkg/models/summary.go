package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCode classifies the contract line type of an invoice. It is derived
// from literal markers in the document text, never from the extraction oracle.
type ProductCode string

const (
	ProductLeasing        ProductCode = "Leasing"
	ProductGeneralExpense ProductCode = "GEN. EXP"
	ProductUnknown        ProductCode = "Unknown"
)

// NotAvailable marks text fields the oracle did not supply.
const NotAvailable = "N/A"

// InvoiceSummary is the canonical extraction result for one invoice PDF.
// It lives in memory for the duration of report generation only.
type InvoiceSummary struct {
	// InvoiceNumber is the vendor-issued identifier (plain code, long
	// alphanumeric ID, or a PFS-prefixed numeric code).
	InvoiceNumber string

	// InvoiceDate is nil when the date could not be parsed; a report is
	// still produced with a blank date field.
	InvoiceDate *time.Time

	Plate        string
	VehicleBrand string

	// VATRate is a fraction in [0,1], e.g. 0.20.
	VATRate decimal.Decimal

	// NetAmount is the pre-tax total.
	NetAmount decimal.Decimal

	// GrossAmount is always recomputed as net * (1 + vat), rounded to
	// 2 fractional digits half-up. It is never taken from the oracle.
	GrossAmount decimal.Decimal

	ProductCode ProductCode

	// Confidence is the oracle's self-reported reliability in [0,1].
	// Informational only; it never gates acceptance.
	Confidence *float64
}

// TransactionRow is one reconciled ledger line enriched with summary data.
// Field order mirrors the fixed report schema.
type TransactionRow struct {
	Plate         string
	Description   string
	NetAmount     decimal.Decimal
	GrossAmount   decimal.Decimal
	Date          string // DD.MM.YYYY, empty when the invoice date was unparseable
	ProductCode   ProductCode
	InvoiceNumber string
}
