package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Accession numbers are LIB-NNNNNN, zero-padded to a fixed width so that
// lexicographic order over the LIB- prefix equals numeric order. That is
// what lets the allocator find the current max with a plain ORDER BY DESC.
const (
	AccessionPrefix = "LIB-"
	accessionDigits = 6

	// Upper bound on copies reserved per request.
	MaxCopiesPerBatch = 500
)

func FormatAccession(n int) string {
	return fmt.Sprintf("%s%0*d", AccessionPrefix, accessionDigits, n)
}

// ParseAccession returns the numeric segment of a LIB- accession number.
func ParseAccession(s string) (int, bool) {
	if !strings.HasPrefix(s, AccessionPrefix) {
		return 0, false
	}
	digits := strings.TrimPrefix(s, AccessionPrefix)
	if len(digits) != accessionDigits {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextAccession derives the first free number from the tenant's current
// maximum ("" when the tenant has no copies yet).
func NextAccession(currentMax string) int {
	n, ok := ParseAccession(currentMax)
	if !ok {
		return 1
	}
	return n + 1
}

// SynthesizeAccessions returns n sequential numbers starting at first.
func SynthesizeAccessions(first, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FormatAccession(first+i))
	}
	return out
}
