// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// dataciteAPIBase is the DataCite REST endpoint. Declared as a var so
// tests can substitute an httptest server.
var dataciteAPIBase = "https://api.datacite.org/dois"

// fetchDataCite resolves a DOI through DataCite. Used as a fallback for
// DOIs CrossRef does not know (datasets, some preprint servers).
func (c *Client) fetchDataCite(ctx context.Context, id types.Identifier, ttl time.Duration) (types.Payload, error) {
	doi := strings.TrimPrefix(id.Canonical, "doi:")
	reqURL := dataciteAPIBase + "/" + url.PathEscape(doi)

	var header http.Header
	if c.cfg.DataCiteToken != "" {
		header = http.Header{"Authorization": {"Bearer " + c.cfg.DataCiteToken}}
	}

	body, cached, err := c.get(ctx, "datacite", reqURL, cache.Key("datacite", id.Canonical), ttl, header)
	if err != nil {
		return types.Payload{}, err
	}

	var dc dataciteResponse
	if err := json.Unmarshal(body, &dc); err != nil {
		return types.Payload{}, malformed("datacite", fmt.Errorf("parsing DataCite response: %w", err))
	}

	attrs := dc.Data.Attributes
	p := types.Payload{
		Container:   strings.TrimSpace(attrs.Publisher),
		Identifiers: []types.Identifier{id},
		Source:      "datacite",
	}
	if cached {
		p.Source = "cache"
	}
	if len(attrs.Titles) > 0 {
		p.Title = strings.TrimSpace(attrs.Titles[0].Title)
	}
	if attrs.PublicationYear > 0 {
		p.Date = time.Date(attrs.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	for _, cr := range attrs.Creators {
		switch {
		case cr.NameType == "Organizational" || (cr.FamilyName == "" && cr.GivenName == ""):
			if name := strings.TrimSpace(cr.Name); name != "" {
				p.Contributors = append(p.Contributors, types.Contributor{Literal: name})
			}
		default:
			p.Contributors = append(p.Contributors, types.Contributor{
				Given:  strings.TrimSpace(cr.GivenName),
				Family: strings.TrimSpace(cr.FamilyName),
			})
		}
	}
	return p, nil
}

// DataCite API JSON structures.
type dataciteResponse struct {
	Data struct {
		Attributes dataciteAttributes `json:"attributes"`
	} `json:"data"`
}

type dataciteAttributes struct {
	Titles          []dataciteTitle   `json:"titles"`
	Creators        []dataciteCreator `json:"creators"`
	Publisher       string            `json:"publisher"`
	PublicationYear int               `json:"publicationYear"`
}

type dataciteTitle struct {
	Title string `json:"title"`
}

type dataciteCreator struct {
	Name       string `json:"name"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	NameType   string `json:"nameType"`
}
