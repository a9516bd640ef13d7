package matcher

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio scores how well a candidate description covers an entry
// description: 1 minus the edit distance normalized by the entry's
// length. The normalization is deliberately one-sided, so a short
// candidate inside a long entry scores low while a candidate equal to
// the entry scores 1.
func Ratio(candidate, entry string) float64 {
	if entry == "" {
		return 0
	}
	distance := levenshtein.DistanceForStrings(
		[]rune(candidate), []rune(entry), levenshtein.DefaultOptions)
	return 1 - float64(distance)/float64(len([]rune(entry)))
}
