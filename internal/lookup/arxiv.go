// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// arxivAPIBase is the arXiv Atom query endpoint. Declared as a var so
// tests can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// fetchArxiv resolves a preprint identifier through the arXiv API. The
// version-stripped canonical form is used, so all versions of a preprint
// share one cache entry.
func (c *Client) fetchArxiv(ctx context.Context, id types.Identifier, ttl time.Duration) (types.Payload, error) {
	arxivID := strings.TrimPrefix(id.Canonical, "preprint:")
	reqURL := fmt.Sprintf("%s?id_list=%s", arxivAPIBase, arxivID)

	body, cached, err := c.get(ctx, "arxiv", reqURL, cache.Key("arxiv", id.Canonical), ttl, nil)
	if err != nil {
		return types.Payload{}, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return types.Payload{}, malformed("arxiv", fmt.Errorf("parsing arXiv response: %w", err))
	}
	if len(feed.Entries) == 0 || strings.TrimSpace(feed.Entries[0].Title) == "" {
		return types.Payload{}, &LookupError{Kind: ErrNotFound, Backend: "arxiv", Err: fmt.Errorf("no entries found for arXiv ID %s", arxivID)}
	}

	entry := feed.Entries[0]
	p := types.Payload{
		Title:       strings.TrimSpace(entry.Title),
		Container:   "arXiv",
		Identifiers: []types.Identifier{id},
		Source:      "arxiv",
	}
	if cached {
		p.Source = "cache"
	}
	if entry.DOI != "" {
		p.Identifiers = append([]types.Identifier{identifier.Normalize(entry.DOI)}, p.Identifiers...)
	}

	for _, a := range entry.Authors {
		p.Contributors = append(p.Contributors, splitPersonalName(strings.TrimSpace(a.Name)))
	}

	if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
		p.Date = t
	}
	return p, nil
}

// splitPersonalName splits a display name on the last space: everything
// before is the given name, the last token the family name. Single-token
// names cannot be split into a personal form and become Literal.
func splitPersonalName(name string) types.Contributor {
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return types.Contributor{Literal: name}
	}
	return types.Contributor{Given: name[:idx], Family: name[idx+1:]}
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
