// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"strings"

	"github.com/pdiddy/cite-engine/internal/sanitize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// LaTeXBibliography renders records as a thebibliography environment, one
// \bibitem per record in the given order, sanitized for the
// typeset-markup grammar.
func LaTeXBibliography(recs []types.BibliographicRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\\begin{thebibliography}{%d}\n", widestLabel(len(recs))))

	for _, rec := range recs {
		rec = sanitize.Record(rec, sanitize.GrammarLaTeX)
		b.WriteString(fmt.Sprintf("\n\\bibitem{%s}\n%s\n", rec.Key, latexItem(rec)))
	}

	b.WriteString("\n\\end{thebibliography}\n")
	return b.String()
}

// widestLabel returns the sample label width for thebibliography: 9 for
// up to nine items, 99 for up to ninety-nine, and so on.
func widestLabel(n int) int {
	w := 9
	for n > w {
		w = w*10 + 9
	}
	return w
}

// latexItem renders one sanitized record as bibliography item text:
// authors, emphasized title, container, year, then the strongest
// identifier.
func latexItem(rec types.BibliographicRecord) string {
	var parts []string

	if len(rec.Contributors) > 0 {
		parts = append(parts, formatLaTeXAuthors(rec.Contributors)+".")
	}
	parts = append(parts, fmt.Sprintf("\\emph{%s}.", rec.Title))

	var tail []string
	if rec.Container != "" {
		tail = append(tail, rec.Container)
	}
	if y := rec.Date.Year(); y > 1 {
		tail = append(tail, fmt.Sprintf("%d", y))
	}
	if len(tail) > 0 {
		parts = append(parts, strings.Join(tail, ", ")+".")
	}

	if link := identifierLink(rec.Identifiers); link != "" {
		parts = append(parts, fmt.Sprintf("\\url{%s}.", link))
	}
	return strings.Join(parts, "\n")
}

// formatLaTeXAuthors joins names with commas and a final "and".
// Organizational contributors appear as their full name, never split into
// a family form.
func formatLaTeXAuthors(contributors []types.Contributor) string {
	names := make([]string, len(contributors))
	for i, c := range contributors {
		if c.IsOrganization() {
			names[i] = c.Literal
			continue
		}
		names[i] = strings.TrimSpace(c.Given + " " + c.Family)
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// identifierLink picks the most stable identifier and returns it in URL
// form.
func identifierLink(ids []types.Identifier) string {
	var preprint, plain string
	for _, id := range ids {
		switch id.Kind {
		case types.KindDOI:
			return "https://doi.org/" + strings.TrimPrefix(id.Canonical, "doi:")
		case types.KindPreprint:
			if preprint == "" {
				preprint = "https://arxiv.org/abs/" + strings.TrimPrefix(id.Canonical, "preprint:")
			}
		case types.KindURL:
			if plain == "" {
				plain = id.Canonical
			}
		}
	}
	if preprint != "" {
		return preprint
	}
	return plain
}
