package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// fold lowercases s, strips combining marks and unifies apostrophes,
// so "Vallée d’Aoste" and "vallee d'aoste" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = apostrophes.Replace(out)
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

func tokenize(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '/' || r == ';'
	})
}
