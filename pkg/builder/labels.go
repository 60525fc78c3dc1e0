package builder

import (
	"regexp"
	"strings"
	"unicode"
)

var wordSeparators = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler turns a field or property name into a label, splitting on
// separators and camelCase boundaries: "stoolType" becomes "Stool Type".
func DefaultLabeler(name string) string {
	var words []string
	for _, part := range wordSeparators.Split(name, -1) {
		for _, word := range splitCamel(part) {
			words = append(words, capitalize(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(part string) []string {
	var (
		words   []string
		current []rune
	)
	runes := []rune(part)
	for i, r := range runes {
		if i > 0 && boundary(runes[i-1], r) {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}

func boundary(prev, r rune) bool {
	return (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
		(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(r))
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
