package rwse

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeWord maps a raw token to its registry lookup form: NFKC, trimmed,
// leading/trailing punctuation stripped, lower-cased. Matching is therefore
// capitalization-insensitive and tolerant of punctuation-adjacent tokens, so
// "There," resolves to the same confusion set as "there".
func NormalizeWord(word string) string {
	w := norm.NFKC.String(word)
	w = strings.TrimSpace(w)
	w = strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.ToLower(w)
}

// NormalizeText performs Unicode normalization on a context sentence and
// strips control characters, keeping tabs and newlines.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}
