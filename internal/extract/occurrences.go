// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates citation occurrences in source text.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Occurrence patterns, in extraction priority order. Later passes skip
// spans already claimed by earlier ones so the URL inside a Markdown link
// is not extracted twice.
var (
	// markdownLinkRe matches [anchor text](https://target).
	markdownLinkRe = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^)\s]+)\)`)

	// bareURLRe matches unbracketed http(s) URLs.
	bareURLRe = regexp.MustCompile(`https?://[^\s)\]>"']+`)

	// bareDOIRe matches DOI tokens: "10.1000/xyz123", "doi:10.1000/xyz123".
	bareDOIRe = regexp.MustCompile(`(?:doi:)?10\.\d{1,9}/[^\s"'<>)\]]+`)

	// preprintTokenRe matches prefixed preprint tokens like "arXiv:2301.07041v2".
	preprintTokenRe = regexp.MustCompile(`(?i)arxiv:\d{4}\.\d{4,5}(?:v\d+)?`)

	// authorYearRe matches bracketed author-year citations like
	// [Smith et al., 2020] or [Smith and Jones, 2019]. These carry no
	// identifier; their raw text is the searchable fragment.
	authorYearRe = regexp.MustCompile(`\[([A-Z][A-Za-z-]+(?:\s+(?:et\s+al\.|and\s+[A-Z][A-Za-z-]+))?,\s*\d{4})\]`)
)

// span tracks a claimed byte range so overlapping passes do not duplicate
// occurrences.
type span struct{ start, end int }

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// Occurrences scans text and returns citation occurrences in document
// order, with Index assigned sequentially and Position set to the byte
// offset of each match. Extraction is deterministic: identical input
// yields an identical occurrence list.
func Occurrences(text string) []types.CitationOccurrence {
	var occs []types.CitationOccurrence
	var claimed []span

	add := func(start, end int, raw, inlineID string) {
		if overlaps(claimed, start, end) {
			return
		}
		claimed = append(claimed, span{start, end})
		occs = append(occs, types.CitationOccurrence{
			Position: start,
			RawText:  strings.TrimSpace(raw),
			InlineID: inlineID,
		})
	}

	for _, m := range markdownLinkRe.FindAllStringSubmatchIndex(text, -1) {
		anchor := text[m[2]:m[3]]
		target := text[m[4]:m[5]]
		add(m[0], m[1], anchor, target)
	}

	for _, m := range bareURLRe.FindAllStringIndex(text, -1) {
		u := strings.TrimRight(text[m[0]:m[1]], ".,;")
		add(m[0], m[0]+len(u), u, u)
	}

	for _, m := range bareDOIRe.FindAllStringIndex(text, -1) {
		d := strings.TrimRight(text[m[0]:m[1]], ".,;")
		add(m[0], m[0]+len(d), d, d)
	}

	for _, m := range preprintTokenRe.FindAllStringIndex(text, -1) {
		p := text[m[0]:m[1]]
		add(m[0], m[1], p, p)
	}

	for _, m := range authorYearRe.FindAllStringSubmatchIndex(text, -1) {
		add(m[0], m[1], text[m[2]:m[3]], "")
	}

	sort.Slice(occs, func(i, j int) bool { return occs[i].Position < occs[j].Position })
	for i := range occs {
		occs[i].Index = i
	}
	return occs
}
