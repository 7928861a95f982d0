// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sanitize

import "strings"

// bibtexEscapes maps reserved characters of the structured-record grammar.
// Ordered pairs: the escaper reads them literal→escaped, the unescaper
// escaped→literal.
var bibtexEscapes = [][2]string{
	{"&", `\&`},
	{"%", `\%`},
	{"#", `\#`},
	{"$", `\$`},
	{"_", `\_`},
	{"{", `\{`},
	{"}", `\}`},
}

// latexEscapes maps reserved characters of the typeset-markup grammar. The
// set is wider than BibTeX's: backslash, tilde, and caret have no
// single-character escape and expand to control words. Backslash must come
// first so the escaper never rewrites escapes it just produced.
var latexEscapes = [][2]string{
	{`\`, `\textbackslash{}`},
	{"&", `\&`},
	{"%", `\%`},
	{"#", `\#`},
	{"$", `\$`},
	{"_", `\_`},
	{"{", `\{`},
	{"}", `\}`},
	{"~", `\textasciitilde{}`},
	{"^", `\textasciicircum{}`},
}

var (
	bibtexEscaper   = newReplacer(bibtexEscapes, false)
	bibtexUnescaper = newReplacer(bibtexEscapes, true)
	latexEscaper    = newReplacer(latexEscapes, false)
	latexUnescaper  = newReplacer(latexEscapes, true)
)

func escaper(g Grammar) *strings.Replacer {
	if g == GrammarLaTeX {
		return latexEscaper
	}
	return bibtexEscaper
}

func unescaper(g Grammar) *strings.Replacer {
	if g == GrammarLaTeX {
		return latexUnescaper
	}
	return bibtexUnescaper
}

// newReplacer builds a Replacer from ordered pairs. Inverted replacers must
// try the longer escaped forms first, so pairs whose escape is a control
// word (\textbackslash{}) are listed before the single-character escapes
// they prefix.
func newReplacer(pairs [][2]string, invert bool) *strings.Replacer {
	args := make([]string, 0, len(pairs)*2)
	if invert {
		// Longest escape first: control words before \x escapes.
		for _, p := range pairs {
			if len(p[1]) > 2 {
				args = append(args, p[1], p[0])
			}
		}
		for _, p := range pairs {
			if len(p[1]) <= 2 {
				args = append(args, p[1], p[0])
			}
		}
	} else {
		for _, p := range pairs {
			args = append(args, p[0], p[1])
		}
	}
	return strings.NewReplacer(args...)
}

// lookalikes normalizes directional quotes, dash variants, and exotic
// spaces to canonical ASCII forms.
var lookalikes = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // low double quote
	"«", `"`, // «
	"»", `"`, // »
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // low single quote
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"‐", "-", // hyphen
	" ", " ", // no-break space
	" ", " ", // figure space
	" ", " ", // thin space
	" ", " ", // narrow no-break space
	"…", "...", // ellipsis
)

// substitutions is the fixed table for characters with no direct
// representation in either grammar: Latin-extended letters without a
// combining-mark decomposition and common typographic symbols seen in the
// corpus.
var substitutions = strings.NewReplacer(
	"ß", "ss", // ß
	"æ", "ae", // æ
	"Æ", "AE", // Æ
	"œ", "oe", // œ
	"Œ", "OE", // Œ
	"ø", "o", // ø
	"Ø", "O", // Ø
	"đ", "d", // đ
	"Đ", "D", // Đ
	"ł", "l", // ł
	"Ł", "L", // Ł
	"ħ", "h", // ħ
	"ŋ", "n", // ŋ
	"þ", "th", // þ
	"Þ", "Th", // Þ
	"ð", "d", // ð
	"ı", "i", // ı
	"×", "x", // ×
	"÷", "/", // ÷
	"±", "+/-", // ±
	"µ", "u", // µ
	"•", "-", // •
	"·", ".", // ·
	"⋅", ".", // ⋅
	"™", "(TM)", // ™
	"©", "(c)", // ©
	"®", "(R)", // ®
)
