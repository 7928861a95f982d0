// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit renders resolved records as BibTeX, LaTeX bibliographies,
// and CSL-YAML, and produces the run's failure report.
package emit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/cite-engine/internal/sanitize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// CollectRecords gathers resolved records from outcomes in document order,
// deduplicating occurrences that resolved to the same work, and assigns
// citation keys. Outcomes must already be sorted by occurrence index.
func CollectRecords(outcomes []types.ResolutionOutcome) []types.BibliographicRecord {
	var recs []types.BibliographicRecord
	seen := make(map[string]bool)
	for _, out := range outcomes {
		if !out.Resolved() {
			continue
		}
		k := dedupeKey(*out.Record)
		if seen[k] {
			continue
		}
		seen[k] = true
		recs = append(recs, *out.Record)
	}
	return AssignKeys(recs)
}

// dedupeKey identifies a work across occurrences: the first identifier
// when one exists, otherwise normalized title plus year.
func dedupeKey(rec types.BibliographicRecord) string {
	if len(rec.Identifiers) > 0 {
		return rec.Identifiers[0].Canonical
	}
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(rec.Title)), rec.Date.Year())
}

// AssignKeys returns copies of recs with citation keys set. The key is the
// first contributor's lowercased surname joined with the year; colliding
// keys get letter suffixes (a, b, c) in document order. Keys are unique
// within one emission run.
func AssignKeys(recs []types.BibliographicRecord) []types.BibliographicRecord {
	out := make([]types.BibliographicRecord, len(recs))
	groups := make(map[string][]int)
	for i, rec := range recs {
		out[i] = rec
		base := baseKey(rec)
		groups[base] = append(groups[base], i)
	}
	for base, idxs := range groups {
		if len(idxs) == 1 {
			out[idxs[0]].Key = base
			continue
		}
		for n, i := range idxs {
			out[i].Key = base + letterSuffix(n)
		}
	}
	return out
}

func baseKey(rec types.BibliographicRecord) string {
	name := "anon"
	if len(rec.Contributors) > 0 {
		c := rec.Contributors[0]
		if c.IsOrganization() {
			if fields := strings.Fields(c.Literal); len(fields) > 0 {
				name = fields[0]
			}
		} else if c.Family != "" {
			name = c.Family
		}
	}
	// Fold diacritics through the substitution table before dropping
	// whatever is left outside ASCII.
	name = keyCharsOnly(sanitize.Sanitize(strings.ToLower(name), sanitize.GrammarBibTeX))
	if name == "" {
		name = "anon"
	}
	if y := rec.Date.Year(); y > 1 {
		return fmt.Sprintf("%s%d", name, y)
	}
	return name
}

// keyCharsOnly keeps ASCII letters and digits.
func keyCharsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// letterSuffix maps 0 to "a", 25 to "z", 26 to "aa".
func letterSuffix(n int) string {
	var sb []byte
	for {
		sb = append([]byte{byte('a' + n%26)}, sb...)
		n = n/26 - 1
		if n < 0 {
			return string(sb)
		}
	}
}
