package catalog

import (
	"regexp"
	"strings"
)

var (
	isbnStrip = regexp.MustCompile(`[^0-9Xx]`)
	isbn10Re  = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Re  = regexp.MustCompile(`^\d{13}$`)
)

// NormalizeISBN strips separators, uppercases, and validates the result as
// a 10- or 13-digit ISBN. ok is false when the cleaned string matches
// neither form.
func NormalizeISBN(raw string) (normalized string, ok bool) {
	s := strings.ToUpper(isbnStrip.ReplaceAllString(raw, ""))
	if isbn10Re.MatchString(s) || isbn13Re.MatchString(s) {
		return s, true
	}
	return "", false
}

// ValidPublicationYear bounds the year to [1000, currentYear+5].
func ValidPublicationYear(year, currentYear int) bool {
	return year >= 1000 && year <= currentYear+5
}
