// Package match pairs invoice PDFs with their transaction detail files by
// the identifier embedded in the file names.
package match

import (
	"regexp"
	"strings"
)

var (
	// A number in parentheses is the primary key, e.g. "Invoice (153351).pdf".
	parenKeyRe = regexp.MustCompile(`\((\d+)\)`)
	// Fallback: a PFS invoice number anywhere in the name.
	pfsKeyRe = regexp.MustCompile(`PFS\d+`)
)

// Marker that distinguishes the per-vehicle detail sheet from other files
// carrying the same invoice key.
const detailsMarker = "INVOICE DETAILS"

// ExtractKey pulls the matching key from an invoice file name: a
// parenthesized number if present, otherwise a PFS invoice number. Returns
// false when the name carries neither.
func ExtractKey(invoiceName string) (string, bool) {
	if m := parenKeyRe.FindStringSubmatch(invoiceName); m != nil {
		return m[1], true
	}
	if m := pfsKeyRe.FindString(invoiceName); m != "" {
		return m, true
	}
	return "", false
}

// FindMatch selects the transaction file belonging to the invoice. Candidates
// are filtered to those containing the invoice's key (case-insensitive); among
// those, a file named as a detail sheet wins, otherwise the first candidate in
// input order.
//
// First-in-order is a heuristic: when several detail files share a key the
// pick can be wrong, which is why callers log the chosen pairing.
func FindMatch(invoiceName string, candidates []string) (string, bool) {
	key, ok := ExtractKey(invoiceName)
	if !ok {
		return "", false
	}
	keyLower := strings.ToLower(strings.TrimSpace(key))

	var matched []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), keyLower) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return "", false
	}

	for _, c := range matched {
		if strings.Contains(strings.ToUpper(c), detailsMarker) {
			return c, true
		}
	}
	return matched[0], true
}
