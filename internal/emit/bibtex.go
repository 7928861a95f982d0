// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"strings"

	"github.com/pdiddy/cite-engine/internal/sanitize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// BibTeX renders one record as a BibTeX entry. The record is sanitized for
// the structured-record grammar first; organizational contributors are
// emitted inside braces so BibTeX never splits them into family/given
// parts.
func BibTeX(rec types.BibliographicRecord) string {
	rec = sanitize.Record(rec, sanitize.GrammarBibTeX)
	entryType := bibtexEntryType(rec)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, rec.Key))

	if len(rec.Contributors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatBibTeXAuthors(rec.Contributors)))
	}
	b.WriteString(fmt.Sprintf("  title = {%s},\n", rec.Title))

	if rec.Container != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, rec.Container))
	}
	if y := rec.Date.Year(); y > 1 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", y))
	}

	for _, id := range rec.Identifiers {
		switch id.Kind {
		case types.KindDOI:
			b.WriteString(fmt.Sprintf("  doi = {%s},\n", strings.TrimPrefix(id.Canonical, "doi:")))
		case types.KindPreprint:
			b.WriteString(fmt.Sprintf("  eprint = {%s},\n  archivePrefix = {arXiv},\n", strings.TrimPrefix(id.Canonical, "preprint:")))
		case types.KindURL:
			b.WriteString(fmt.Sprintf("  url = {%s},\n", id.Canonical))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// BibTeXList renders records as a BibTeX file, entries separated by blank
// lines, in the given order.
func BibTeXList(recs []types.BibliographicRecord) string {
	entries := make([]string, len(recs))
	for i, rec := range recs {
		entries[i] = BibTeX(rec)
	}
	return strings.Join(entries, "\n")
}

// bibtexEntryType picks the entry type from the container name.
func bibtexEntryType(rec types.BibliographicRecord) string {
	container := strings.ToLower(rec.Container)

	if strings.Contains(container, "proceedings") ||
		strings.Contains(container, "conference") ||
		strings.Contains(container, "workshop") ||
		strings.Contains(container, "symposium") {
		return "inproceedings"
	}
	if container == "" {
		for _, id := range rec.Identifiers {
			if id.Kind == types.KindURL {
				return "misc"
			}
		}
	}
	return "article"
}

// formatBibTeXAuthors joins contributors with " and ". Personal names use
// the "Family, Given" form; organizational names are brace-protected.
func formatBibTeXAuthors(contributors []types.Contributor) string {
	formatted := make([]string, len(contributors))
	for i, c := range contributors {
		switch {
		case c.IsOrganization():
			formatted[i] = "{" + c.Literal + "}"
		case c.Given != "":
			formatted[i] = fmt.Sprintf("%s, %s", c.Family, c.Given)
		default:
			formatted[i] = c.Family
		}
	}
	return strings.Join(formatted, " and ")
}
