package reconcile

import "strings"

// Column keyword sets. Exports from the leasing portal come in both English
// and Turkish variants, so each logical field matches on several keywords.
var (
	plateKeywords       = []string{"PLATE", "PLAKA"}
	descriptionKeywords = []string{"BRAND"}
	amountKeywords      = []string{"TOTAL RENT", "TOTAL AMOUNT"}
)

// Columns holds the resolved zero-based indexes of the required columns.
type Columns struct {
	Plate       int
	Description int
	Amount      int
}

// ResolveColumns locates the required columns in the header row by keyword.
// Matching is a case-insensitive substring check so decorated headers like
// "VEHICLE PLATE NO" still resolve. Returns MissingColumnsError naming every
// logical field that could not be located.
func ResolveColumns(header []string) (Columns, error) {
	cols := Columns{Plate: -1, Description: -1, Amount: -1}

	for i, cell := range header {
		upper := strings.ToUpper(strings.TrimSpace(cell))
		if upper == "" {
			continue
		}
		if cols.Plate < 0 && containsAny(upper, plateKeywords) {
			cols.Plate = i
		}
		if cols.Description < 0 && containsAny(upper, descriptionKeywords) {
			cols.Description = i
		}
		if cols.Amount < 0 && containsAny(upper, amountKeywords) {
			cols.Amount = i
		}
	}

	var missing []string
	if cols.Plate < 0 {
		missing = append(missing, "plate")
	}
	if cols.Description < 0 {
		missing = append(missing, "description")
	}
	if cols.Amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return Columns{}, &MissingColumnsError{Missing: missing}
	}
	return cols, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
