// Package report renders reconciled transaction rows into a formatted XLSX
// workbook, one workbook per invoice.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fleetinvoice/pkg/models"
)

// SheetName is the single worksheet every report carries.
const SheetName = "Transactions"

// Report column order is a fixed contract with the downstream accounting
// import; do not reorder or rename. "DESCTRIPTION" is the spelling that
// import expects.
var headers = []string{
	"PLAKA",
	"RENTAL VEHICLE BRAND AND MODEL",
	"toplam ft.tutari",
	"GROSS",
	"DATE",
	"DESCTRIPTION",
	"INVOICE",
}

// Per-column widths by role: identity columns stay narrow, the free-text
// description gets room, money columns fit formatted millions.
var columnWidths = []float64{15, 40, 18, 18, 25, 25, 15}

const moneyFormat = "#,##0.00"

// Write renders the rows into an XLSX workbook and returns its bytes. The
// output depends only on the input rows, so writing the same rows twice
// yields a workbook with identical cell content.
func Write(rows []models.TransactionRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	if err := writeHeader(f); err != nil {
		return nil, err
	}
	if err := writeRows(f, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D7E4BC"}},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("report: column name: %w", err)
		}
		cell := col + "1"
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("report: header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("report: header style %s: %w", cell, err)
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("report: column width %s: %w", col, err)
		}
	}
	return nil
}

func writeRows(f *excelize.File, rows []models.TransactionRow) error {
	numFmt := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("report: money style: %w", err)
	}

	for i, row := range rows {
		r := i + 2 // data starts below the header
		values := []interface{}{
			row.Plate,
			row.Description,
			row.NetAmount.InexactFloat64(),
			row.GrossAmount.InexactFloat64(),
			row.Date,
			string(row.ProductCode),
			row.InvoiceNumber,
		}
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return fmt.Errorf("report: row %d: %w", r, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("report: row %d: %w", r, err)
		}

		start, _ := excelize.CoordinatesToCellName(3, r)
		end, _ := excelize.CoordinatesToCellName(4, r)
		if err := f.SetCellStyle(SheetName, start, end, moneyStyle); err != nil {
			return fmt.Errorf("report: money cells row %d: %w", r, err)
		}
	}
	return nil
}
