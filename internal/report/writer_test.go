package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fleetinvoice/pkg/models"
)

func sampleRows() []models.TransactionRow {
	return []models.TransactionRow{
		{
			Plate:         "34ABC123",
			Description:   "FORD TRANSIT",
			NetAmount:     decimal.RequireFromString("1234.50"),
			GrossAmount:   decimal.RequireFromString("1481.40"),
			Date:          "15.01.2025",
			ProductCode:   models.ProductLeasing,
			InvoiceNumber: "PFS2025000001235",
		},
		{
			Plate:         "06XYZ789",
			Description:   "VW CADDY",
			NetAmount:     decimal.RequireFromString("987.65"),
			GrossAmount:   decimal.RequireFromString("1185.18"),
			Date:          "15.01.2025",
			ProductCode:   models.ProductLeasing,
			InvoiceNumber: "PFS2025000001235",
		},
	}
}

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteHeaderAndRowOrder(t *testing.T) {
	data, err := Write(sampleRows())
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"PLAKA",
		"RENTAL VEHICLE BRAND AND MODEL",
		"toplam ft.tutari",
		"GROSS",
		"DATE",
		"DESCTRIPTION",
		"INVOICE",
	}, rows[0])

	assert.Equal(t, "34ABC123", rows[1][0])
	assert.Equal(t, "FORD TRANSIT", rows[1][1])
	assert.Equal(t, "15.01.2025", rows[1][4])
	assert.Equal(t, "Leasing", rows[1][5])
	assert.Equal(t, "PFS2025000001235", rows[1][6])
	assert.Equal(t, "06XYZ789", rows[2][0])
}

func TestWriteMoneyCellsUseNumberFormat(t *testing.T) {
	data, err := Write(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue(SheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "1,234.50", got, "net amount rendered through #,##0.00")

	got, err = f.GetCellValue(SheetName, "D2")
	require.NoError(t, err)
	assert.Equal(t, "1,481.40", got)
}

func TestWriteEmptyRowsStillProducesHeader(t *testing.T) {
	data, err := Write(nil)
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, "PLAKA", rows[0][0])
}

func TestWriteSameRowsYieldsSameCellContent(t *testing.T) {
	first, err := Write(sampleRows())
	require.NoError(t, err)
	second, err := Write(sampleRows())
	require.NoError(t, err)

	assert.Equal(t, readSheet(t, first), readSheet(t, second))
}
