package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHeadersAllPresent(t *testing.T) {
	v := ValidateHeaders(templateHeaders())
	assert.True(t, v.IsValid)
	assert.Empty(t, v.MissingHeaders)
}

func TestValidateHeadersCaseInsensitive(t *testing.T) {
	headers := []string{
		"CAMPAIGN NAME", "ad set name", "DAY", "objective",
		"impressions", "LINK CLICKS", "amount spent (inr)", "Results",
	}
	v := ValidateHeaders(headers)
	assert.True(t, v.IsValid)
	assert.Empty(t, v.MissingHeaders)
}

func TestValidateHeadersSynonyms(t *testing.T) {
	headers := []string{
		"Campaign", "Ad Set", "Date", "Goal",
		"Impr.", "Clicks", "Spend", "Conversions",
	}
	v := ValidateHeaders(headers)
	assert.True(t, v.IsValid)
}

func TestValidateHeadersMissing(t *testing.T) {
	headers := []string{
		"Campaign name", "Ad set name", "Day", "Objective",
		"Impressions", "Link clicks", "Results",
	}
	v := ValidateHeaders(headers)
	require.False(t, v.IsValid)
	assert.Equal(t, []string{"Amount spent (INR)"}, v.MissingHeaders)
}

func TestValidateHeadersEmptyFile(t *testing.T) {
	v := ValidateHeaders(nil)
	require.False(t, v.IsValid)
	assert.Equal(t, []string{emptyFileSentinel}, v.MissingHeaders)
}

func TestValidateHeadersClaimsEachHeaderOnce(t *testing.T) {
	// "Clicks" is a synonym of "Link clicks"; one header cannot satisfy
	// the slot twice when the literal column is also absent elsewhere.
	headers := []string{
		"Campaign name", "Ad set name", "Day", "Objective",
		"Impressions", "Clicks", "Amount spent (INR)", "Results",
	}
	v := ValidateHeaders(headers)
	assert.True(t, v.IsValid)

	// Removing the one claimable header breaks exactly one slot.
	v = ValidateHeaders(headers[:5])
	require.False(t, v.IsValid)
	assert.Contains(t, v.MissingHeaders, "Link clicks")
	assert.Contains(t, v.MissingHeaders, "Amount spent (INR)")
	assert.Contains(t, v.MissingHeaders, "Results")
}

func TestResolveColumnMappingSynonymFirst(t *testing.T) {
	csvHeaders := []string{"Campaign name", "Spend", "Total Amount spent (INR) extra"}
	candidates := ResolveColumnMapping([]string{"Amount spent (INR)"}, csvHeaders)

	require.Contains(t, candidates, "Amount spent (INR)")
	got := candidates["Amount spent (INR)"]
	require.Len(t, got, 2)
	assert.Equal(t, "Spend", got[0])
	assert.Equal(t, "Total Amount spent (INR) extra", got[1])
}

func TestResolveColumnMappingSubstringBothDirections(t *testing.T) {
	// Header shorter than the canonical name still matches via containment.
	candidates := ResolveColumnMapping([]string{"Cost per result"}, []string{"result"})
	assert.Equal(t, []string{"result"}, candidates["Cost per result"])
}

func TestResolveColumnMappingSkipsSentinel(t *testing.T) {
	candidates := ResolveColumnMapping([]string{emptyFileSentinel}, []string{"anything"})
	assert.Empty(t, candidates)
}

func TestAutoMapping(t *testing.T) {
	candidates := MappingCandidates{
		"Amount spent (INR)": {"Spend"},
		"Link clicks":        {"Clicks", "All clicks"},
		"Results":            {},
	}
	mapping := AutoMapping(candidates)
	assert.Equal(t, map[string]string{"Amount spent (INR)": "Spend"}, mapping)
}

func TestRequiredColumns(t *testing.T) {
	required := RequiredColumns()
	assert.Equal(t, []string{
		"Campaign name", "Ad set name", "Day", "Objective",
		"Impressions", "Link clicks", "Amount spent (INR)", "Results",
	}, required)
}
