package reconciliation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuation variants the sites disagree on, mapped to their ASCII form
// before non-ASCII runes are discarded.
var punctuationFold = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'",
	"ʼ", "'",
	"‐", "-",
	"‑", "-",
	"–", "-",
	"—", "-",
)

// NormalizeName reduces a player name to the plain-ASCII form both sources are
// joined on: trimmed, accents decomposed and dropped, inner whitespace collapsed.
func NormalizeName(name string) string {
	name = punctuationFold.Replace(strings.TrimSpace(name))

	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeTeam upper-cases and trims a team abbreviation.
func NormalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}
