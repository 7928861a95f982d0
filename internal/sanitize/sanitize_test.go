// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sanitize

import (
	"testing"
)

func TestSanitizeEscaping(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		grammar Grammar
		want    string
	}{
		{"bibtex ampersand", "Food & Fashion", GrammarBibTeX, `Food \& Fashion`},
		{"bibtex percent and underscore", "50% of the_total", GrammarBibTeX, `50\% of the\_total`},
		{"bibtex braces", "a {grouped} term", GrammarBibTeX, `a \{grouped\} term`},
		{"bibtex leaves tilde alone", "a~b", GrammarBibTeX, "a~b"},
		{"latex ampersand", "Food & Fashion", GrammarLaTeX, `Food \& Fashion`},
		{"latex tilde", "a~b", GrammarLaTeX, `a\textasciitilde{}b`},
		{"latex caret", "x^2", GrammarLaTeX, `x\textasciicircum{}2`},
		{"latex backslash", `a\b`, GrammarLaTeX, `a\textbackslash{}b`},
		{"plain text untouched", "Nothing special here.", GrammarLaTeX, "Nothing special here."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input, tt.grammar); got != tt.want {
				t.Errorf("Sanitize(%q, %v) = %q, want %q", tt.input, tt.grammar, got, tt.want)
			}
		})
	}
}

func TestSanitizeLookalikesAndSubstitutions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"directional quotes", "\u201cquoted\u201d and \u2018single\u2019", `"quoted" and 'single'`},
		{"dash variants", "pp. 10\u201320 \u2014 revised", "pp. 10-20 - revised"},
		{"non-breaking space", "10\u00a0kg", "10 kg"},
		{"ellipsis", "and so on\u2026", "and so on..."},
		{"latin extended", "S\u00f8rensen \u0141ukasz h\u00e6mostasis", "Sorensen Lukasz haemostasis"},
		{"eszett", "Stra\u00dfe", "Strasse"},
		{"typographic symbols", "5\u00d7 faster\u2122", "5x faster(TM)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input, GrammarBibTeX); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeWhitespaceCollapse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a  b", "a b"},
		{"a\t\tb", "a b"},
		{"a\nb\r\nc", "a b c"},
		{"  padded  ", "padded"},
		{"a     \t  \n   b", "a b"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.input, GrammarBibTeX); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Sanitization must be a no-op on its own output for both grammars.
func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Food & Fashion: 50% _of_ {everything}",
		`already \& escaped \textasciitilde{} text`,
		"S\u00f8rensen \u2014 \u201cCraft\u201d  of\tUse\u2026",
		`x^2 ~ a\b`,
		"",
	}
	for _, g := range []Grammar{GrammarBibTeX, GrammarLaTeX} {
		for _, in := range inputs {
			once := Sanitize(in, g)
			twice := Sanitize(once, g)
			if once != twice {
				t.Errorf("grammar %v: Sanitize not idempotent on %q:\n once: %q\ntwice: %q", g, in, once, twice)
			}
		}
	}
}

func TestSanitizeGrammarsDiffer(t *testing.T) {
	in := "a~b^c"
	if Sanitize(in, GrammarBibTeX) == Sanitize(in, GrammarLaTeX) {
		t.Error("the two grammars produced identical output for reserved-set-divergent input")
	}
}
