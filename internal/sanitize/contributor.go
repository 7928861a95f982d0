// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sanitize

import (
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// orgTokens are whole-word markers of organizational names. A contributor
// whose name contains one of these was mis-parsed as a person somewhere
// upstream.
var orgTokens = map[string]bool{
	"agency":       true,
	"association":  true,
	"bank":         true,
	"bureau":       true,
	"center":       true,
	"centre":       true,
	"college":      true,
	"commission":   true,
	"committee":    true,
	"consortium":   true,
	"corporation":  true,
	"council":      true,
	"department":   true,
	"foundation":   true,
	"initiative":   true,
	"institute":    true,
	"institution":  true,
	"laboratory":   true,
	"ministry":     true,
	"nations":      true,
	"network":      true,
	"organisation": true,
	"organization": true,
	"partnership":  true,
	"programme":    true,
	"project":      true,
	"society":      true,
	"university":   true,
}

// Organizationalize normalizes a contributor's form. A contributor with no
// distinguishable given name (family-only, or a name containing an
// organizational marker token) is converted to the organization form, so
// it can never be emitted as a family-only personal name. Enforced here,
// at the sanitization layer, rather than left to emitters.
func Organizationalize(c types.Contributor) types.Contributor {
	if c.Literal != "" {
		return c
	}
	full := strings.TrimSpace(strings.TrimSpace(c.Given) + " " + strings.TrimSpace(c.Family))
	if full == "" {
		return c
	}
	if strings.TrimSpace(c.Given) == "" || looksOrganizational(full) {
		return types.Contributor{Literal: full}
	}
	return c
}

// looksOrganizational reports whether any whole word of the name is an
// organizational marker.
func looksOrganizational(name string) bool {
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		if orgTokens[strings.Trim(tok, ".,;:()")] {
			return true
		}
	}
	return false
}

// Record returns a sanitized copy of rec for the target grammar: title and
// container run through the full pipeline, and every contributor is
// organizationalized and sanitized field by field. Identifiers, date, key,
// and confidence pass through untouched.
func Record(rec types.BibliographicRecord, g Grammar) types.BibliographicRecord {
	out := rec
	out.Title = Sanitize(rec.Title, g)
	out.Container = Sanitize(rec.Container, g)

	out.Contributors = make([]types.Contributor, len(rec.Contributors))
	for i, c := range rec.Contributors {
		c = Organizationalize(c)
		out.Contributors[i] = types.Contributor{
			Given:   Sanitize(c.Given, g),
			Family:  Sanitize(c.Family, g),
			Literal: Sanitize(c.Literal, g),
		}
	}
	return out
}
