package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetinvoice/internal/pdftext"
	"fleetinvoice/internal/summary"
)

// fakeAcquirer keys on the raw invoice bytes: by default it returns them
// verbatim as the acquired text, with per-document error injection.
type fakeAcquirer struct {
	errs map[string]error
}

func (f *fakeAcquirer) AcquireText(ctx context.Context, pdfBytes []byte) (string, error) {
	if err := f.errs[string(pdfBytes)]; err != nil {
		return "", err
	}
	return string(pdfBytes), nil
}

type fakeExtractor struct {
	fields map[string]summary.FieldMap
	errs   map[string]error
	calls  int
}

func (f *fakeExtractor) ExtractFields(ctx context.Context, doc summary.Document) (summary.FieldMap, error) {
	f.calls++
	if err := f.errs[doc.Text]; err != nil {
		return nil, err
	}
	if fm, ok := f.fields[doc.Text]; ok {
		return fm, nil
	}
	return summary.FieldMap{"invoice_number": "PFS-TEST"}, nil
}

const detailsCSV = "PLAKA,BRAND,TOTAL RENT\n34ABC123,FORD TRANSIT,\"1.234,50\"\n"

func leasingInvoice(name, text string) File {
	return File{Name: name, Data: []byte(text)}
}

func detailsFile(name string) File {
	return File{Name: name, Data: []byte(detailsCSV)}
}

func newTestPipeline(acq *fakeAcquirer, ext *fakeExtractor) *Pipeline {
	return NewPipeline(acq, ext, 20.0)
}

func TestRunHappyPath(t *testing.T) {
	p := newTestPipeline(&fakeAcquirer{}, &fakeExtractor{
		fields: map[string]summary.FieldMap{
			"LINE 1 invoice text": {
				"invoice_number": "PFS2025000001235",
				"invoice_date":   "2025-01-15",
				"vat_percentage": 20.0,
				"total_rent_net": 1234.50,
			},
		},
	})

	res, err := p.Run(context.Background(),
		[]File{leasingInvoice("Invoice (153351).pdf", "LINE 1 invoice text")},
		[]File{detailsFile("INVOICE DETAILS 153351.csv")})
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Skipped)
	require.Contains(t, res.Reports, "output_Invoice (153351).xlsx")
	assert.NotEmpty(t, res.Reports["output_Invoice (153351).xlsx"])
	assert.NotEmpty(t, res.Log)
}

func TestRunContainsPerInvoiceFailures(t *testing.T) {
	acq := &fakeAcquirer{errs: map[string]error{
		"broken document": pdftext.NewAcquireError("AcquireText", pdftext.ErrNoTextExtracted, ""),
	}}
	p := newTestPipeline(acq, &fakeExtractor{})

	res, err := p.Run(context.Background(),
		[]File{
			leasingInvoice("Invoice (111111).pdf", "broken document"),
			leasingInvoice("Invoice (153351).pdf", "LINE 1 readable text"),
		},
		[]File{detailsFile("INVOICE DETAILS 153351.csv")})
	require.NoError(t, err)

	assert.Contains(t, res.Errors, "Invoice (111111).pdf")
	assert.Contains(t, res.Reports, "output_Invoice (153351).xlsx", "good invoice still processed")
}

func TestRunAuthFailureStopsFurtherExtraction(t *testing.T) {
	ext := &fakeExtractor{errs: map[string]error{
		"first invoice": summary.NewExtractionError("ExtractFields", summary.ErrAuthFailed, "invalid api key"),
	}}
	p := newTestPipeline(&fakeAcquirer{}, ext)

	res, err := p.Run(context.Background(),
		[]File{
			leasingInvoice("Invoice (111111).pdf", "first invoice"),
			leasingInvoice("Invoice (153351).pdf", "second invoice"),
		},
		[]File{detailsFile("INVOICE DETAILS 153351.csv")})
	require.NoError(t, err)

	assert.Equal(t, 1, ext.calls, "no oracle calls after credentials were rejected")
	assert.Len(t, res.Errors, 2)
	assert.Empty(t, res.Reports)
}

func TestRunEngineUnavailableAbortsBatch(t *testing.T) {
	acq := &fakeAcquirer{errs: map[string]error{
		"scanned doc": pdftext.NewAcquireError("Recognize", pdftext.ErrEngineUnavailable, "tesseract missing"),
	}}
	ext := &fakeExtractor{}
	p := newTestPipeline(acq, ext)

	res, err := p.Run(context.Background(),
		[]File{
			leasingInvoice("Invoice (111111).pdf", "scanned doc"),
			leasingInvoice("Invoice (153351).pdf", "never reached"),
		},
		[]File{detailsFile("INVOICE DETAILS 153351.csv")})

	require.ErrorIs(t, err, pdftext.ErrEngineUnavailable)
	assert.Contains(t, res.Errors, "Invoice (111111).pdf")
	assert.Zero(t, ext.calls)
}

func TestRunUnmatchedInvoiceIsSkippedNotFailed(t *testing.T) {
	p := newTestPipeline(&fakeAcquirer{}, &fakeExtractor{})

	res, err := p.Run(context.Background(),
		[]File{leasingInvoice("Invoice (999999).pdf", "some text")},
		[]File{detailsFile("INVOICE DETAILS 153351.csv")})
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"Invoice (999999).pdf"}, res.Skipped)
	assert.Empty(t, res.Reports)
}

func TestRunReconciliationFailureIsContained(t *testing.T) {
	p := newTestPipeline(&fakeAcquirer{}, &fakeExtractor{})

	badTable := File{Name: "INVOICE DETAILS 153351.csv", Data: []byte("no,header,here\n1,2,3\n")}
	res, err := p.Run(context.Background(),
		[]File{leasingInvoice("Invoice (153351).pdf", "text")},
		[]File{badTable})
	require.NoError(t, err)

	require.Contains(t, res.Errors, "Invoice (153351).pdf")
	assert.Contains(t, res.Errors["Invoice (153351).pdf"], "reconciliation failed")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "output_Invoice (153351).xlsx", OutputName("Invoice (153351).pdf"))
	assert.Equal(t, "output_scan.march.xlsx", OutputName("scan.march.pdf"))
	assert.Equal(t, "output_noext.xlsx", OutputName("noext"))
}
