package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name    string
		invoice string
		want    string
		ok      bool
	}{
		{"parenthesized number", "Invoice (153351) final.pdf", "153351", true},
		{"pfs number", "PFS2025000001235.pdf", "PFS2025000001235", true},
		{"paren wins over pfs", "PFS2025000001235 (153351).pdf", "153351", true},
		{"no key", "scan_march.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractKey(tt.invoice)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindMatchPrefersDetailsSheet(t *testing.T) {
	candidates := []string{
		"153351 summary.xlsx",
		"INVOICE DETAILS 153351.xlsx",
		"153351 extra.xlsx",
	}

	got, ok := FindMatch("Invoice (153351) final.pdf", candidates)
	assert.True(t, ok)
	assert.Equal(t, "INVOICE DETAILS 153351.xlsx", got)

	// the details sheet wins regardless of its position
	reordered := []string{candidates[2], candidates[0], candidates[1]}
	got, ok = FindMatch("Invoice (153351) final.pdf", reordered)
	assert.True(t, ok)
	assert.Equal(t, "INVOICE DETAILS 153351.xlsx", got)
}

func TestFindMatchFallsBackToFirstCandidate(t *testing.T) {
	candidates := []string{
		"153351 february.xlsx",
		"153351 march.xlsx",
	}

	got, ok := FindMatch("Invoice (153351).pdf", candidates)
	assert.True(t, ok)
	assert.Equal(t, "153351 february.xlsx", got)
}

func TestFindMatchCaseInsensitive(t *testing.T) {
	got, ok := FindMatch("invoice pfs2025000001235.pdf", []string{"details PFS2025000001235.xlsx"})
	assert.False(t, ok, "key extraction is case-sensitive for PFS numbers")
	assert.Empty(t, got)

	got, ok = FindMatch("invoice PFS2025000001235.pdf", []string{"details pfs2025000001235.xlsx"})
	assert.True(t, ok, "candidate filtering is case-insensitive")
	assert.Equal(t, "details pfs2025000001235.xlsx", got)
}

func TestFindMatchNoKeyOrNoCandidates(t *testing.T) {
	_, ok := FindMatch("scan_march.pdf", []string{"153351.xlsx"})
	assert.False(t, ok)

	_, ok = FindMatch("Invoice (153351).pdf", []string{"999999.xlsx"})
	assert.False(t, ok)

	_, ok = FindMatch("Invoice (153351).pdf", nil)
	assert.False(t, ok)
}
