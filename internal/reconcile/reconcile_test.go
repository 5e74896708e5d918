package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fleetinvoice/pkg/models"
)

func testSummary() *models.InvoiceSummary {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return &models.InvoiceSummary{
		InvoiceNumber: "PFS2025000001235",
		InvoiceDate:   &date,
		VATRate:       decimal.RequireFromString("0.2"),
		ProductCode:   models.ProductLeasing,
	}
}

func TestResolveColumns(t *testing.T) {
	header := []string{"NO", "VEHICLE PLATE", "RENTAL VEHICLE BRAND AND MODEL", "PERIOD", "TOTAL RENT AMOUNT"}

	cols, err := ResolveColumns(header)
	require.NoError(t, err)
	assert.Equal(t, Columns{Plate: 1, Description: 2, Amount: 4}, cols)
}

func TestResolveColumnsTurkishHeaders(t *testing.T) {
	header := []string{"PLAKA", "BRAND", "TOTAL RENT"}

	cols, err := ResolveColumns(header)
	require.NoError(t, err)
	assert.Equal(t, Columns{Plate: 0, Description: 1, Amount: 2}, cols)
}

func TestResolveColumnsMissingNamesLogicalFields(t *testing.T) {
	_, err := ResolveColumns([]string{"PLAKA", "PERIOD"})

	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"description", "amount"}, missingErr.Missing)
}

func TestLoadTableCSVWithTitleBlock(t *testing.T) {
	csvData := []byte(
		"ACME FLEET LEASING\n" +
			"Invoice 153351,,\n" +
			"\n" +
			"PLAKA,BRAND,TOTAL RENT\n" +
			"34ABC123,FORD TRANSIT,\"1.234,50\"\n" +
			"06XYZ789,VW CADDY,\"987,65\"\n")

	table, err := LoadTable("details.csv", csvData)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLAKA", "BRAND", "TOTAL RENT"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "34ABC123", table.Rows[0][0])
}

func TestLoadTableXLSXHeaderOnThirdRow(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ACME FLEET LEASING"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Invoice 153351"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"PLATE", "BRAND", "TOTAL AMOUNT"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"34ABC123", "FORD TRANSIT", "1.234,50"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := LoadTable("details.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"PLATE", "BRAND", "TOTAL AMOUNT"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "FORD TRANSIT", table.Rows[0][1])
}

func TestLoadTableNoHeaderRow(t *testing.T) {
	csvData := []byte("just,some,cells\nwithout,a,header\n")

	_, err := LoadTable("details.csv", csvData)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestLoadTableRejectsLegacyXLS(t *testing.T) {
	_, err := LoadTable("details.xls", []byte{0xD0, 0xCF, 0x11, 0xE0})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReconcileBroadcastsSummaryFields(t *testing.T) {
	table := &Table{
		Header: []string{"PLAKA", "BRAND", "TOTAL RENT"},
		Rows: [][]string{
			{"34ABC123", "FORD TRANSIT", "1.234,50"},
			{"06XYZ789", "VW CADDY", "987,65"},
		},
	}

	rows, err := Reconcile(table, testSummary())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "34ABC123", first.Plate)
	assert.Equal(t, "FORD TRANSIT", first.Description)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(first.NetAmount), "net %s", first.NetAmount)
	assert.True(t, decimal.RequireFromString("1481.40").Equal(first.GrossAmount), "gross %s", first.GrossAmount)
	assert.Equal(t, "15.01.2025", first.Date)
	assert.Equal(t, models.ProductLeasing, first.ProductCode)
	assert.Equal(t, "PFS2025000001235", first.InvoiceNumber)

	second := rows[1]
	assert.True(t, decimal.RequireFromString("987.65").Equal(second.NetAmount))
	assert.True(t, decimal.RequireFromString("1185.18").Equal(second.GrossAmount))
}

func TestReconcileKeepsRowWithBadAmount(t *testing.T) {
	table := &Table{
		Header: []string{"PLAKA", "BRAND", "TOTAL RENT"},
		Rows: [][]string{
			{"34ABC123", "FORD TRANSIT", "n/a"},
			{"", "", ""},
		},
	}

	rows, err := Reconcile(table, testSummary())
	require.NoError(t, err)
	require.Len(t, rows, 1, "empty rows are dropped, bad-amount rows kept")
	assert.True(t, rows[0].NetAmount.IsZero())
	assert.True(t, rows[0].GrossAmount.IsZero())
}

func TestReconcileNilDateYieldsEmptyDateCell(t *testing.T) {
	s := testSummary()
	s.InvoiceDate = nil

	table := &Table{
		Header: []string{"PLAKA", "BRAND", "TOTAL RENT"},
		Rows:   [][]string{{"34ABC123", "FORD TRANSIT", "100,00"}},
	}

	rows, err := Reconcile(table, s)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Date)
}

func TestReconcileMissingColumnsFails(t *testing.T) {
	table := &Table{
		Header: []string{"PLAKA", "PERIOD"},
		Rows:   [][]string{{"34ABC123", "2025-01"}},
	}

	_, err := Reconcile(table, testSummary())
	var missingErr *MissingColumnsError
	assert.ErrorAs(t, err, &missingErr)
}
