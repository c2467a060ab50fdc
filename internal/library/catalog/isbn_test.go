package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LIBRIS-backend/internal/library/catalog"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "isbn10_with_hyphens", raw: "0-306-40615-2", want: "0306406152", ok: true},
		{name: "isbn10_with_spaces", raw: "0 306 40615 2", want: "0306406152", ok: true},
		{name: "isbn10_check_digit_x", raw: "0-8044-2957-x", want: "080442957X", ok: true},
		{name: "isbn13_with_hyphens", raw: "978-0-306-40615-7", want: "9780306406157", ok: true},
		{name: "isbn13_plain", raw: "9780306406157", want: "9780306406157", ok: true},
		{name: "too_short", raw: "12345", ok: false},
		{name: "eleven_digits", raw: "12345678901", ok: false},
		{name: "letters_only", raw: "abc", ok: false},
		{name: "x_in_wrong_position", raw: "0X0640615 2", ok: false},
		{name: "x_in_isbn13", raw: "978030640615X", ok: false},
		{name: "empty", raw: "", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := catalog.NormalizeISBN(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestValidPublicationYear(t *testing.T) {
	const currentYear = 2026

	tests := []struct {
		name string
		year int
		want bool
	}{
		{name: "lower_bound", year: 1000, want: true},
		{name: "below_lower_bound", year: 999, want: false},
		{name: "current_year", year: currentYear, want: true},
		{name: "upper_bound", year: currentYear + 5, want: true},
		{name: "beyond_upper_bound", year: currentYear + 6, want: false},
		{name: "zero", year: 0, want: false},
		{name: "negative", year: -5, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, catalog.ValidPublicationYear(tc.year, currentYear))
		})
	}
}
