// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/identifier"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// crossrefWorksBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefWorksBase = "https://api.crossref.org/works"

// fetchCrossRef resolves a DOI identifier through the CrossRef works API.
func (c *Client) fetchCrossRef(ctx context.Context, id types.Identifier, ttl time.Duration) (types.Payload, error) {
	doi := strings.TrimPrefix(id.Canonical, "doi:")
	reqURL := crossrefWorksBase + "/" + url.PathEscape(doi)
	if c.cfg.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.cfg.Mailto)
	}

	body, cached, err := c.get(ctx, "crossref", reqURL, cache.Key("crossref", id.Canonical), ttl, nil)
	if err != nil {
		return types.Payload{}, err
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return types.Payload{}, malformed("crossref", fmt.Errorf("parsing CrossRef response: %w", err))
	}
	p := crossrefWorkToPayload(cr.Message)
	if cached {
		p.Source = "cache"
	}
	return p, nil
}

// FetchByQuery searches CrossRef's bibliographic query for a free-text
// citation fragment and returns the best-ranked work. Used for
// identifier-less occurrences and the lookup CLI.
func (c *Client) FetchByQuery(ctx context.Context, query string, ttl time.Duration) (types.Payload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.Payload{}, &LookupError{Kind: ErrPermanent, Backend: "crossref", Err: fmt.Errorf("empty query")}
	}

	params := url.Values{
		"query.bibliographic": {query},
		"rows":                {"1"},
	}
	if c.cfg.Mailto != "" {
		params.Set("mailto", c.cfg.Mailto)
	}
	reqURL := crossrefWorksBase + "?" + params.Encode()

	body, cached, err := c.get(ctx, "crossref", reqURL, cache.Key("crossref-query", strings.ToLower(query)), ttl, nil)
	if err != nil {
		return types.Payload{}, err
	}

	var cr crossrefListResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return types.Payload{}, malformed("crossref", fmt.Errorf("parsing CrossRef response: %w", err))
	}
	if len(cr.Message.Items) == 0 {
		return types.Payload{}, &LookupError{Kind: ErrNotFound, Backend: "crossref", Err: fmt.Errorf("no works match %q", query)}
	}
	p := crossrefWorkToPayload(cr.Message.Items[0])
	if cached {
		p.Source = "cache"
	}
	return p, nil
}

// crossrefWorkToPayload maps a CrossRef work onto the canonical Payload
// shape. CrossRef represents organizational authors with a bare "name"
// field and no given/family split; those become Literal contributors.
func crossrefWorkToPayload(w crossrefWork) types.Payload {
	p := types.Payload{Source: "crossref"}

	if len(w.Title) > 0 {
		p.Title = strings.TrimSpace(w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		p.Container = strings.TrimSpace(w.ContainerTitle[0])
	}

	for _, a := range w.Author {
		switch {
		case a.Name != "":
			p.Contributors = append(p.Contributors, types.Contributor{Literal: strings.TrimSpace(a.Name)})
		case a.Family != "":
			p.Contributors = append(p.Contributors, types.Contributor{
				Given:  strings.TrimSpace(a.Given),
				Family: strings.TrimSpace(a.Family),
			})
		}
	}

	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		parts := w.Issued.DateParts[0]
		year, month, day := parts[0], 1, 1
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		p.Date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}

	if w.DOI != "" {
		p.Identifiers = append(p.Identifiers, identifier.Normalize(w.DOI))
	}
	if w.URL != "" {
		if u := identifier.Normalize(w.URL); u.Resolvable() {
			p.Identifiers = append(p.Identifiers, u)
		}
	}
	return p
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefListResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	URL            string           `json:"URL"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	// Name is set for organizational authors.
	Name string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
