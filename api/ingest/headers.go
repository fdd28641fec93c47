package ingest

import "strings"

const emptyFileSentinel = "Empty file"

// HeaderValidation is the structured result of header checking. It is
// always returned, never an error; the caller decides whether to block
// the upload or ask the user for a manual mapping.
type HeaderValidation struct {
	IsValid        bool     `json:"isValid"`
	MissingHeaders []string `json:"missingHeaders"`
}

// MappingCandidates lists proposed source headers per missing canonical
// column. Synonym-table hits come before substring hits.
type MappingCandidates map[string][]string

// ValidateHeaders checks the first CSV line against the required subset
// of CanonicalColumns. Matching is case-insensitive, order-independent,
// and accepts synonyms. A header can satisfy only one canonical slot;
// registry order decides when a header would match two.
func ValidateHeaders(headers []string) HeaderValidation {
	if len(headers) == 0 {
		return HeaderValidation{IsValid: false, MissingHeaders: []string{emptyFileSentinel}}
	}

	claimed := make(map[int]bool, len(headers))
	missing := []string{}
	for _, col := range CanonicalColumns {
		if !col.Required {
			continue
		}
		idx := matchHeader(col, headers, claimed)
		if idx < 0 {
			missing = append(missing, col.Name)
			continue
		}
		claimed[idx] = true
	}
	return HeaderValidation{IsValid: len(missing) == 0, MissingHeaders: missing}
}

// matchHeader returns the index of the first unclaimed header matching the
// column literally or via a synonym, or -1. Literal match wins over synonyms.
func matchHeader(col CanonicalColumn, headers []string, claimed map[int]bool) int {
	for i, h := range headers {
		if !claimed[i] && strings.EqualFold(strings.TrimSpace(h), col.Name) {
			return i
		}
	}
	for _, syn := range col.Synonyms {
		for i, h := range headers {
			if !claimed[i] && strings.EqualFold(strings.TrimSpace(h), syn) {
				return i
			}
		}
	}
	return -1
}

// ResolveColumnMapping proposes candidate CSV headers for each missing
// canonical column. Candidates are hints only: synonym-table hits first,
// then headers containing the canonical name as a case-insensitive
// substring. Ties are all surfaced; nothing is picked silently.
func ResolveColumnMapping(missingHeaders, csvHeaders []string) MappingCandidates {
	out := make(MappingCandidates, len(missingHeaders))
	for _, name := range missingHeaders {
		if name == emptyFileSentinel {
			continue
		}
		candidates := []string{}
		seen := make(map[string]bool)

		if col, ok := columnByName(name); ok {
			for _, syn := range col.Synonyms {
				for _, h := range csvHeaders {
					trimmed := strings.TrimSpace(h)
					if strings.EqualFold(trimmed, syn) && !seen[trimmed] {
						candidates = append(candidates, trimmed)
						seen[trimmed] = true
					}
				}
			}
		}

		lowerName := strings.ToLower(name)
		for _, h := range csvHeaders {
			trimmed := strings.TrimSpace(h)
			lowerHeader := strings.ToLower(trimmed)
			if seen[trimmed] {
				continue
			}
			if strings.Contains(lowerHeader, lowerName) || strings.Contains(lowerName, lowerHeader) {
				candidates = append(candidates, trimmed)
				seen[trimmed] = true
			}
		}
		out[name] = candidates
	}
	return out
}

// AutoMapping builds a requiredColumn -> sourceHeader table from the
// candidates, taking only columns with exactly one candidate. Ambiguous
// columns are left out for manual resolution.
func AutoMapping(candidates MappingCandidates) map[string]string {
	mapping := make(map[string]string)
	for name, opts := range candidates {
		if len(opts) == 1 {
			mapping[name] = opts[0]
		}
	}
	return mapping
}
