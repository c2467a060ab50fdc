package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LIBRIS-backend/internal/library/policy"
)

func TestDefaults(t *testing.T) {
	pol := policy.Defaults()
	assert.Equal(t, 14, pol.LoanDurationDays)
	assert.InDelta(t, 0.50, pol.FinePerDay, 1e-9)
	assert.Equal(t, 3, pol.MaxBooksPerStudent)
}
