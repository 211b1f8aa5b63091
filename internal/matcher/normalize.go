package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize folds compatibility forms and full-width characters and
// lower-cases the result. Every comparison in the matcher happens on
// normalized text.
func Normalize(text string) string {
	folded := width.Fold.String(norm.NFKC.String(text))
	return strings.TrimSpace(strings.ToLower(folded))
}

// words splits normalized text into letter/digit runs.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
