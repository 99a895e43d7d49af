package fulltext

import (
	"strings"
	"unicode"
)

// Tokenize splits text on non-alphanumeric boundaries and case-folds
// the resulting terms. Hindi postpositions ("ka", "hai") are kept:
// they carry signal in short Hinglish questions, unlike English stop
// words in prose search.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}
