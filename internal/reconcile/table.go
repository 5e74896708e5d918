// Package reconcile loads per-vehicle transaction tables and joins them with
// the extracted invoice summary into report rows.
package reconcile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanLimit bounds how deep the header search goes. Portal exports put
// a title block above the table, but never more than a few rows of it.
const headerScanLimit = 10

// Table is a transaction table with its header row already located.
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadTable parses a transaction file into a Table. The format is chosen by
// file extension: .csv is read directly, .xlsx (and friends) through
// excelize. The legacy binary .xls container is not supported.
//
// The header row is found by scanning the first rows for a plate column
// keyword; everything above it is discarded, everything below becomes Rows.
func LoadTable(name string, data []byte) (*Table, error) {
	const op = "LoadTable"

	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readWorkbook(data)
	case ".xls":
		return nil, NewReconcileError(op, ErrUnsupportedFormat, "legacy .xls files must be resaved as .xlsx")
	default:
		return nil, NewReconcileError(op, ErrUnsupportedFormat, fmt.Sprintf("unrecognized extension %q", ext))
	}
	if err != nil {
		return nil, NewReconcileError(op, err, name)
	}
	if len(rows) == 0 {
		return nil, NewReconcileError(op, ErrEmptyTable, name)
	}

	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, NewReconcileError(op, ErrHeaderNotFound, name)
	}

	return &Table{
		Header: rows[headerIdx],
		Rows:   rows[headerIdx+1:],
	}, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	// Portal CSV exports pad the title block unevenly.
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	return f.GetRows(sheets[0])
}

// findHeaderRow returns the index of the first row within headerScanLimit
// that carries a plate column keyword, or -1.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if containsAny(strings.ToUpper(cell), plateKeywords) {
				return i
			}
		}
	}
	return -1
}
