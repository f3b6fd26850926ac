package crossvalidation

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// normalizeName lower-cases and collapses whitespace so "  ANA  machava" and
// "Ana Machava" compare equal.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// nameSimilarity is 1 - distance/maxLen over normalized names, in [0, 1].
// Lengths and distance are counted in runes. A missing name on either side
// scores 0.
func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	la, lb := utf8.RuneCountInString(na), utf8.RuneCountInString(nb)
	if la == 0 || lb == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(na, nb))/float64(max(la, lb))
}
