package filter

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryLength caps the free-text search box.
const MaxQueryLength = 1000

// NormalizeQuery lower-cases a search query and truncates it to
// MaxQueryLength runes. Surrounding whitespace is kept, so " job" does not
// match "cronjob". Only an empty query disables the search predicate.
func NormalizeQuery(query string) string {
	query = strings.ToLower(query)
	if utf8.RuneCountInString(query) <= MaxQueryLength {
		return query
	}
	runes := []rune(query)
	return string(runes[:MaxQueryLength])
}
