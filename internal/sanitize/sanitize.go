// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize converts arbitrary Unicode metadata into escaped text
// for one of two output grammars. The pipeline is deterministic and
// idempotent: sanitizing already-sanitized text is a no-op.
package sanitize

import (
	"strings"
)

// Grammar selects the escaping rule-set of the target output.
type Grammar int

const (
	// GrammarBibTeX is the structured-record grammar (BibTeX fields).
	GrammarBibTeX Grammar = iota

	// GrammarLaTeX is the typeset-markup grammar (LaTeX body text). Its
	// reserved-character set is wider than BibTeX's; the two grammars never
	// share an escape table.
	GrammarLaTeX
)

func (g Grammar) String() string {
	switch g {
	case GrammarBibTeX:
		return "bibtex"
	case GrammarLaTeX:
		return "latex"
	default:
		return "unknown"
	}
}

// Sanitize runs the full pipeline on text for the target grammar. Stages
// execute in a fixed order; later stages assume earlier ones already ran:
//
//  1. unescape markup already escaped for the grammar, so a second pass
//     starts from the same plain text as the first;
//  2. normalize punctuation lookalikes (directional quotes, dash variants,
//     non-breaking spaces) to canonical ASCII forms;
//  3. substitute characters with no direct representation in the grammar;
//  4. escape the grammar's reserved characters;
//  5. collapse whitespace runs to single spaces.
func Sanitize(text string, g Grammar) string {
	s := unescaper(g).Replace(text)
	s = lookalikes.Replace(s)
	s = substitutions.Replace(s)
	s = escaper(g).Replace(s)
	return collapseWhitespace(s)
}

// collapseWhitespace turns tabs and newlines into spaces, then shrinks
// space runs with a repeated-replace loop. The loop terminates because each
// pass strictly decreases the string length; it deliberately avoids
// character-class matching, whose behavior around combining characters is
// an edge-case trap.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	for {
		next := strings.ReplaceAll(s, "  ", " ")
		if len(next) == len(s) {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
