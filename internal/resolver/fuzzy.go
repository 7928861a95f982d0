// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolver

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// candidate is one scored library record.
type candidate struct {
	rec   types.BibliographicRecord
	score float64
}

// scoreAll scores every library record against the query and returns the
// two best candidates. Records are visited in snapshot order and ties keep
// the earlier record, so scoring is deterministic.
func (r *Resolver) scoreAll(q *query) (best, second candidate) {
	for _, rec := range r.lib.Records() {
		c := candidate{rec: rec, score: r.score(q, rec)}
		switch {
		case c.score > best.score:
			best, second = c, best
		case c.score > second.score:
			second = c
		}
	}
	return best, second
}

// score combines title similarity with author surname overlap per the
// configured weights. Without occurrence surnames the title similarity
// stands alone rather than being dragged down by a zero author term.
func (r *Resolver) score(q *query, rec types.BibliographicRecord) float64 {
	// Author-year citations carry no title. Surname overlap gated on the
	// cited year is the whole score.
	if q.year != 0 {
		if rec.Date.Year() != q.year {
			return 0
		}
		return surnameOverlap(q.surnames, rec.Contributors)
	}

	title := titleSimilarity(q.fragment, rec.Title)
	if len(q.surnames) == 0 {
		return title
	}
	authors := surnameOverlap(q.surnames, rec.Contributors)
	return r.cfg.TitleWeight*title + r.cfg.AuthorWeight*authors
}

// titleSimilarity compares two titles after case-folding and punctuation
// stripping. It is the larger of the normalized edit-distance similarity
// and the token containment ratio; containment rescues the common case of
// a short citation form against a full title with subtitle.
func titleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	edit := 1 - float64(levenshtein.ComputeDistance(na, nb))/float64(longest)

	if cont := tokenContainment(strings.Fields(na), strings.Fields(nb)); cont > edit {
		return cont
	}
	return edit
}

// tokenContainment is the shared-token count over the smaller token set.
func tokenContainment(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	shared := 0
	for _, t := range b {
		if set[t] {
			shared++
			set[t] = false
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}

// normalizeTitle lowercases, maps punctuation to spaces, and collapses
// whitespace.
func normalizeTitle(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// surnameOverlap is the fraction of occurrence surnames found among the
// record's contributors.
func surnameOverlap(surnames []string, contributors []types.Contributor) float64 {
	if len(surnames) == 0 || len(contributors) == 0 {
		return 0
	}
	have := make(map[string]bool, len(contributors))
	for _, c := range contributors {
		if s := surnameOf(c); s != "" {
			have[s] = true
		}
	}
	matchedCount := 0
	for _, s := range surnames {
		if have[s] {
			matchedCount++
		}
	}
	return float64(matchedCount) / float64(len(surnames))
}

// surnameOf returns the lowercased comparison surname of a contributor.
// Organizational contributors compare by their last name token.
func surnameOf(c types.Contributor) string {
	name := c.Family
	if c.IsOrganization() {
		fields := strings.Fields(c.Literal)
		if len(fields) == 0 {
			return ""
		}
		name = fields[len(fields)-1]
	}
	return strings.ToLower(strings.TrimSpace(name))
}
