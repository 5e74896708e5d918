package reconcile

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fleetinvoice/internal/logger"
	"fleetinvoice/internal/numfmt"
	"fleetinvoice/pkg/models"
)

// ReportDateFormat is how dates appear in the reconciled rows (DD.MM.YYYY).
const ReportDateFormat = "02.01.2006"

var one = decimal.NewFromInt(1)

// Reconcile joins the transaction table with the invoice summary: one output
// row per table row, carrying the per-vehicle net amount from the table and
// the invoice-level fields (date, product code, invoice number) broadcast
// from the summary. Each row's gross is computed from its own net and the
// invoice VAT rate.
//
// Rows whose amount cell does not parse are kept with a zero amount so the
// vehicle still shows up in the report; fully empty rows are dropped.
func Reconcile(table *Table, s *models.InvoiceSummary) ([]models.TransactionRow, error) {
	cols, err := ResolveColumns(table.Header)
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("reconcile")

	date := ""
	if s.InvoiceDate != nil {
		date = s.InvoiceDate.Format(ReportDateFormat)
	}

	rows := make([]models.TransactionRow, 0, len(table.Rows))
	for i, raw := range table.Rows {
		plate := cellAt(raw, cols.Plate)
		description := cellAt(raw, cols.Description)
		amountStr := cellAt(raw, cols.Amount)

		if plate == "" && description == "" && amountStr == "" {
			continue
		}

		amount, err := numfmt.ParseLocaleDecimal(amountStr)
		if err != nil {
			logRowWarning(log, s, i, amountStr)
			amount = decimal.Zero
		}

		rows = append(rows, models.TransactionRow{
			Plate:         plate,
			Description:   description,
			NetAmount:     amount,
			GrossAmount:   amount.Mul(one.Add(s.VATRate)).Round(2),
			Date:          date,
			ProductCode:   s.ProductCode,
			InvoiceNumber: s.InvoiceNumber,
		})
	}

	log.Info().
		Str("invoice_number", s.InvoiceNumber).
		Int("table_rows", len(table.Rows)).
		Int("reconciled_rows", len(rows)).
		Msg("Reconciliation completed")

	return rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func logRowWarning(log zerolog.Logger, s *models.InvoiceSummary, row int, amount string) {
	log.Warn().
		Str("invoice_number", s.InvoiceNumber).
		Int("row", row).
		Str("amount", amount).
		Msg("Unparseable amount cell, keeping row with zero amount")
}
