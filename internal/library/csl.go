package library

import (
	"strings"
	"time"

	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that reference-manager exports parse directly and emitted records are
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `json:"id" yaml:"id"`
	Type           string    `json:"type" yaml:"type"`
	Title          string    `json:"title" yaml:"title"`
	Author         []CSLName `json:"author,omitempty" yaml:"author,omitempty"`
	ContainerTitle string    `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	Issued         *CSLDate  `json:"issued,omitempty" yaml:"issued,omitempty"`
	DOI            string    `json:"DOI,omitempty" yaml:"DOI,omitempty"`
	URL            string    `json:"URL,omitempty" yaml:"URL,omitempty"`
}

// CSLName represents a contributor in CSL format. Organizational names use
// the literal field; personal names the family/given split.
type CSLName struct {
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `json:"date-parts" yaml:"date-parts"`
}

// Record converts a CSL item into the canonical record shape, normalizing
// its identifiers for matching.
func (item CSLItem) Record() types.BibliographicRecord {
	rec := types.BibliographicRecord{
		Key:        item.ID,
		Title:      strings.TrimSpace(item.Title),
		Container:  strings.TrimSpace(item.ContainerTitle),
		Confidence: types.TierUnresolved,
	}

	for _, a := range item.Author {
		rec.Contributors = append(rec.Contributors, types.Contributor{
			Given:   strings.TrimSpace(a.Given),
			Family:  strings.TrimSpace(a.Family),
			Literal: strings.TrimSpace(a.Literal),
		})
	}

	if item.Issued != nil && len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		parts := item.Issued.DateParts[0]
		year, month, day := parts[0], 1, 1
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		rec.Date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}

	if item.DOI != "" {
		rec.Identifiers = append(rec.Identifiers, identifier.Normalize(item.DOI))
	}
	if item.URL != "" {
		if id := identifier.Normalize(item.URL); id.Resolvable() {
			rec.Identifiers = append(rec.Identifiers, id)
		}
	}
	return rec
}

// FromRecord converts a resolved record back into a CSL item for emission.
func FromRecord(rec types.BibliographicRecord) CSLItem {
	item := CSLItem{
		ID:             rec.Key,
		Type:           "article",
		Title:          rec.Title,
		ContainerTitle: rec.Container,
	}

	for _, c := range rec.Contributors {
		item.Author = append(item.Author, CSLName{
			Family:  c.Family,
			Given:   c.Given,
			Literal: c.Literal,
		})
	}

	if !rec.Date.IsZero() {
		item.Issued = &CSLDate{
			DateParts: [][]int{{rec.Date.Year(), int(rec.Date.Month()), rec.Date.Day()}},
		}
	}

	for _, id := range rec.Identifiers {
		switch id.Kind {
		case types.KindDOI:
			if item.DOI == "" {
				item.DOI = strings.TrimPrefix(id.Canonical, "doi:")
			}
		case types.KindURL:
			if item.URL == "" {
				item.URL = id.Canonical
			}
		case types.KindPreprint:
			if item.URL == "" {
				item.URL = "https://arxiv.org/abs/" + strings.TrimPrefix(id.Canonical, "preprint:")
			}
		}
	}
	return item
}
