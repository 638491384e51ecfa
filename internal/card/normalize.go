package card

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Capitalize capitalizes every whitespace-separated word of text and joins
// the words with single spaces. Each word gets a title-cased first rune and a
// lowercased remainder; hyphens, apostrophes and acronyms get no special
// treatment ("tongue-tied" -> "Tongue-tied", "NASA" -> "Nasa").
func Capitalize(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return strings.Join(words, " ")
}

func capitalizeWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError && size <= 1 {
		return w
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(w[size:])
}

// NormalizeName normalizes a deck name:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
