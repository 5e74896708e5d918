// Package batch orchestrates the invoice pipeline: text acquisition, oracle
// extraction, transaction matching, reconciliation, and report rendering for
// a whole upload of files.
//
// Failures are contained per invoice: one bad document lands in the error map
// while the rest of the batch keeps going. Two failures are batch-fatal
// because continuing would fail every remaining document the same way: a
// missing OCR engine aborts the run, and a credential rejection from the
// oracle stops further extraction calls.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"fleetinvoice/internal/logger"
	"fleetinvoice/internal/match"
	"fleetinvoice/internal/pdftext"
	"fleetinvoice/internal/reconcile"
	"fleetinvoice/internal/report"
	"fleetinvoice/internal/summary"
	"fleetinvoice/pkg/models"
)

// File is one uploaded file, already read into memory.
type File struct {
	Name string
	Data []byte
}

// Result collects everything one batch run produced.
type Result struct {
	// Reports maps output file names to rendered XLSX bytes.
	Reports map[string][]byte

	// Log is the human-readable processing log in event order.
	Log []string

	// Errors maps invoice file names to what went wrong with them.
	Errors map[string]string

	// Skipped lists invoices that had no matching transaction file.
	Skipped []string
}

// Pipeline wires the stages together.
type Pipeline struct {
	acquirer   pdftext.Acquirer
	extractor  summary.Extractor
	vatPercent float64
	log        zerolog.Logger
}

// NewPipeline creates a Pipeline. vatPercent is the VAT default applied when
// an invoice does not state its rate.
func NewPipeline(acquirer pdftext.Acquirer, extractor summary.Extractor, vatPercent float64) *Pipeline {
	return &Pipeline{
		acquirer:   acquirer,
		extractor:  extractor,
		vatPercent: vatPercent,
		log:        logger.WithComponent("batch"),
	}
}

// Run processes the invoices in upload order against the transaction files.
// The returned error is non-nil only for batch-fatal conditions; per-invoice
// failures live in Result.Errors.
func (p *Pipeline) Run(ctx context.Context, invoices, transactions []File) (*Result, error) {
	res := &Result{
		Reports: make(map[string][]byte),
		Errors:  make(map[string]string),
	}

	transactionNames := make([]string, len(transactions))
	transactionsByName := make(map[string]File, len(transactions))
	for i, tf := range transactions {
		transactionNames[i] = tf.Name
		transactionsByName[tf.Name] = tf
	}

	p.log.Info().
		Int("invoices", len(invoices)).
		Int("transaction_files", len(transactions)).
		Msg("Starting batch run")

	authFailed := false

	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		log := p.log.With().Str("invoice", inv.Name).Logger()

		text, err := p.acquirer.AcquireText(ctx, inv.Data)
		if err != nil {
			if errors.Is(err, pdftext.ErrEngineUnavailable) {
				res.Errors[inv.Name] = err.Error()
				res.logf("%s: OCR engine unavailable, aborting batch", inv.Name)
				return res, fmt.Errorf("batch: OCR engine unavailable: %w", err)
			}
			p.failInvoice(res, inv.Name, "text acquisition failed", err)
			continue
		}
		res.logf("%s: acquired %d characters of text", inv.Name, len(text))

		if authFailed {
			p.failInvoice(res, inv.Name, "skipped", summary.ErrAuthFailed)
			continue
		}

		fields, err := p.extractor.ExtractFields(ctx, summary.Document{Text: text, PDF: inv.Data})
		if err != nil {
			if errors.Is(err, summary.ErrAuthFailed) {
				authFailed = true
				res.logf("%s: oracle rejected credentials, no further extraction calls", inv.Name)
			}
			p.failInvoice(res, inv.Name, "extraction failed", err)
			continue
		}

		s := summary.Parse(fields, text, p.vatPercent)
		res.logf("%s: extracted invoice %s (%s)", inv.Name, s.InvoiceNumber, s.ProductCode)

		matchedName, ok := match.FindMatch(inv.Name, transactionNames)
		if !ok {
			log.Warn().Msg("No matching transaction file, skipping invoice")
			res.Skipped = append(res.Skipped, inv.Name)
			res.logf("%s: no matching transaction file, skipped", inv.Name)
			continue
		}
		res.logf("%s: matched transaction file %s", inv.Name, matchedName)

		rows, err := p.reconcileFile(transactionsByName[matchedName], s)
		if err != nil {
			p.failInvoice(res, inv.Name, "reconciliation failed", err)
			continue
		}

		out, err := report.Write(rows)
		if err != nil {
			p.failInvoice(res, inv.Name, "report rendering failed", err)
			continue
		}

		name := OutputName(inv.Name)
		res.Reports[name] = out
		res.logf("%s: wrote %s with %d rows", inv.Name, name, len(rows))
		log.Info().
			Str("output", name).
			Int("rows", len(rows)).
			Msg("Invoice processed")
	}

	p.log.Info().
		Int("reports", len(res.Reports)).
		Int("errors", len(res.Errors)).
		Int("skipped", len(res.Skipped)).
		Msg("Batch run finished")

	return res, nil
}

func (p *Pipeline) reconcileFile(tf File, s *models.InvoiceSummary) ([]models.TransactionRow, error) {
	table, err := reconcile.LoadTable(tf.Name, tf.Data)
	if err != nil {
		return nil, err
	}
	return reconcile.Reconcile(table, s)
}

func (p *Pipeline) failInvoice(res *Result, name, stage string, err error) {
	p.log.Error().Str("invoice", name).Err(err).Msg("Invoice failed, continuing batch")
	res.Errors[name] = fmt.Sprintf("%s: %v", stage, err)
	res.logf("%s: %s: %v", name, stage, err)
}

func (r *Result) logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// OutputName derives the report file name for an invoice upload:
// "Invoice (153351).pdf" becomes "output_Invoice (153351).xlsx".
func OutputName(invoiceName string) string {
	base := strings.TrimSuffix(invoiceName, filepath.Ext(invoiceName))
	return "output_" + base + ".xlsx"
}
