// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier canonicalizes heterogeneous bibliographic identifiers
// (DOIs, preprint IDs, URLs) into one comparable form.
package identifier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// doiPattern matches a DOI anywhere in a string: "10." followed by a
// registrant code and a suffix, e.g. "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`10\.\d{1,9}/[^\s"'<>]+`)

// preprintPattern matches arXiv-style preprint IDs with an optional
// version suffix: "2301.07041", "arxiv:2301.07041v2".
var preprintPattern = regexp.MustCompile(`^(?:arxiv:)?(\d{4}\.\d{4,5})(v\d+)?$`)

// preprintURLPattern matches arXiv abstract and PDF URLs.
var preprintURLPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})(v\d+)?`)

// Normalize canonicalizes raw into an Identifier. It never fails:
// unrecognized input yields KindNone with the trimmed, lowercased original
// as the canonical form.
//
// Rules, applied in order: lowercase and normalize the URL shape (https,
// no "www.", no trailing slash); extract an embedded DOI; recognize a
// preprint ID shape, stripping any trailing version marker; otherwise keep
// the normalized URL. DOI wins over preprint, preprint over URL, because
// DOIs are the most stable identifier and URLs the most volatile.
func Normalize(raw string) types.Identifier {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return types.Identifier{Kind: types.KindNone, Canonical: ""}
	}

	s := normalizeURLShape(trimmed)

	if doi := doiPattern.FindString(s); doi != "" {
		return types.Identifier{Kind: types.KindDOI, Canonical: "doi:" + strings.TrimRight(doi, ".,;")}
	}

	if m := preprintPattern.FindStringSubmatch(strings.TrimPrefix(s, "doi:")); m != nil {
		return types.Identifier{Kind: types.KindPreprint, Canonical: "preprint:" + m[1]}
	}
	if m := preprintURLPattern.FindStringSubmatch(s); m != nil {
		return types.Identifier{Kind: types.KindPreprint, Canonical: "preprint:" + m[1]}
	}

	if u, err := url.Parse(s); err == nil && u.Scheme == "https" && u.Host != "" {
		return types.Identifier{Kind: types.KindURL, Canonical: s}
	}

	return types.Identifier{Kind: types.KindNone, Canonical: trimmed}
}

// normalizeURLShape collapses http to https, strips a "www." host prefix,
// and removes trailing slashes. Non-URL input passes through unchanged
// apart from trailing-slash removal.
func normalizeURLShape(s string) string {
	if strings.HasPrefix(s, "http://") {
		s = "https://" + strings.TrimPrefix(s, "http://")
	}
	if strings.HasPrefix(s, "https://www.") {
		s = "https://" + strings.TrimPrefix(s, "https://www.")
	}
	return strings.TrimRight(s, "/")
}

// Equal reports whether two identifiers name the same bibliographic target.
func Equal(a, b types.Identifier) bool {
	return a.Kind == b.Kind && a.Canonical == b.Canonical
}

// URLForm returns the resolver-URL equivalent of a DOI or preprint
// identifier, normalized through Normalize so it compares against URL
// identifiers held by a library. For URL and unrecognized identifiers it
// returns the zero Identifier.
func URLForm(id types.Identifier) types.Identifier {
	switch id.Kind {
	case types.KindDOI:
		// Normalize would re-extract the DOI from a doi.org URL, so the URL
		// identifier is built directly.
		return types.Identifier{Kind: types.KindURL, Canonical: "https://doi.org/" + strings.TrimPrefix(id.Canonical, "doi:")}
	case types.KindPreprint:
		return types.Identifier{Kind: types.KindURL, Canonical: "https://arxiv.org/abs/" + strings.TrimPrefix(id.Canonical, "preprint:")}
	default:
		return types.Identifier{}
	}
}
