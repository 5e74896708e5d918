// Package numfmt normalizes locale-formatted numbers and loosely formatted
// dates found in Turkish invoices and ledger exports.
package numfmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats lists the accepted textual date representations, tried in order.
var dateFormats = []string{
	"02.01.2006", // DD.MM.YYYY
	"2.1.2006",   // D.M.YYYY
	"02-01-2006", // DD-MM-YYYY
	"2-1-2006",   // D-M-YYYY
	"2006-01-02", // ISO
}

// ParseLocaleDecimal converts a Turkish-locale number (dot as thousands
// separator, comma as decimal point) into a decimal rounded to two fractional
// digits, half-up. Empty input yields zero, not an error: callers rely on it
// as the defaulting path for absent amounts.
func ParseLocaleDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	// "3.450.961,18" -> "3450961.18"
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount %q (cleaned: %q): %w", s, cleaned, err)
	}
	return d.Round(2), nil
}

// ParseFlexibleDate parses the date representations seen across invoices and
// oracle output (DD.MM.YYYY, DD-MM-YYYY, YYYY-MM-DD). Unparseable input
// reports ok=false rather than an error so a report can still be produced
// with a blank date field.
func ParseFlexibleDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if date, err := time.Parse(format, cleaned); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
