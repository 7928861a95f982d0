// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"testing"

	"github.com/pdiddy/cite-engine/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKind  types.IdentifierKind
		wantCanon string
	}{
		// DOI extraction.
		{"bare DOI", "10.1000/xyz123", types.KindDOI, "doi:10.1000/xyz123"},
		{"doi.org URL", "https://doi.org/10.1000/xyz123", types.KindDOI, "doi:10.1000/xyz123"},
		{"dx.doi.org URL", "http://dx.doi.org/10.1000/XYZ123", types.KindDOI, "doi:10.1000/xyz123"},
		{"doi: prefix", "doi:10.1145/1234567.1234568", types.KindDOI, "doi:10.1145/1234567.1234568"},
		{"DOI with trailing period", "10.1000/xyz123.", types.KindDOI, "doi:10.1000/xyz123"},

		// Preprint IDs with version stripping.
		{"bare preprint ID", "2104.00000", types.KindPreprint, "preprint:2104.00000"},
		{"versioned preprint ID", "2104.00000v2", types.KindPreprint, "preprint:2104.00000"},
		{"arXiv prefix", "arXiv:2104.00000v1", types.KindPreprint, "preprint:2104.00000"},
		{"arxiv abs URL", "https://arxiv.org/abs/2104.00000v3", types.KindPreprint, "preprint:2104.00000"},
		{"arxiv pdf URL", "http://www.arxiv.org/pdf/2104.00000", types.KindPreprint, "preprint:2104.00000"},

		// URL normalization.
		{"https URL", "https://example.org/paper", types.KindURL, "https://example.org/paper"},
		{"http collapsed", "http://example.org/paper", types.KindURL, "https://example.org/paper"},
		{"www stripped", "https://www.example.org/paper", types.KindURL, "https://example.org/paper"},
		{"trailing slash stripped", "https://example.org/paper/", types.KindURL, "https://example.org/paper"},
		{"case folded", "HTTPS://Example.ORG/Paper", types.KindURL, "https://example.org/paper"},

		// Unrecognized input.
		{"free text", "Smith et al. 2020", types.KindNone, "smith et al. 2020"},
		{"empty", "", types.KindNone, ""},
		{"whitespace only", "   ", types.KindNone, ""},
		{"scheme-less host", "example.org/paper", types.KindNone, "example.org/paper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got.Kind != tt.wantKind {
				t.Errorf("Normalize(%q) kind = %v, want %v", tt.input, got.Kind, tt.wantKind)
			}
			if got.Canonical != tt.wantCanon {
				t.Errorf("Normalize(%q) canonical = %q, want %q", tt.input, got.Canonical, tt.wantCanon)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	pairs := []struct {
		name string
		a, b string
	}{
		{"doi host variants", "https://doi.org/10.1/ABC", "http://dx.doi.org/10.1/abc"},
		{"preprint versions", "2104.00000v1", "2104.00000v2"},
		{"arXiv prefix vs URL", "arXiv:2301.07041", "https://arxiv.org/abs/2301.07041v4"},
		{"www and trailing slash", "http://www.example.org/p/", "https://example.org/p"},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			a, b := Normalize(tt.a), Normalize(tt.b)
			if !Equal(a, b) {
				t.Errorf("Normalize(%q) = %+v, Normalize(%q) = %+v; want equal", tt.a, a, tt.b, b)
			}
		})
	}
}

func TestNormalizeNeverEquatesDifferentWorks(t *testing.T) {
	a := Normalize("10.1000/xyz123")
	b := Normalize("10.1000/xyz124")
	if Equal(a, b) {
		t.Fatalf("distinct DOIs compared equal: %+v vs %+v", a, b)
	}
}

func TestURLForm(t *testing.T) {
	doi := Normalize("10.1000/xyz123")
	u := URLForm(doi)
	if u.Kind != types.KindURL || u.Canonical != "https://doi.org/10.1000/xyz123" {
		t.Errorf("URLForm(doi) = %+v", u)
	}

	pre := Normalize("arXiv:2104.00000v2")
	u = URLForm(pre)
	if u.Kind != types.KindURL || u.Canonical != "https://arxiv.org/abs/2104.00000" {
		t.Errorf("URLForm(preprint) = %+v", u)
	}

	if got := URLForm(Normalize("https://example.org")); !got.IsZero() {
		t.Errorf("URLForm(url) = %+v, want zero", got)
	}
}
