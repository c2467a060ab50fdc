package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LIBRIS-backend/internal/library/eligibility"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		snap     eligibility.Snapshot
		maxBooks int
		want     bool
		reason   string
	}{
		{
			name:     "clean_borrower",
			snap:     eligibility.Snapshot{IsActive: true},
			maxBooks: 3,
			want:     true,
			reason:   "eligible to borrow",
		},
		{
			name:     "inactive_blocks",
			snap:     eligibility.Snapshot{IsActive: false},
			maxBooks: 3,
			want:     false,
			reason:   "borrower is inactive",
		},
		{
			name:     "overdue_blocks",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 1, OverdueLoans: 1},
			maxBooks: 3,
			want:     false,
			reason:   "borrower has overdue loans",
		},
		{
			name:     "at_limit_blocks",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 3},
			maxBooks: 3,
			want:     false,
			reason:   "loan limit reached",
		},
		{
			name:     "under_limit_passes",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 2},
			maxBooks: 3,
			want:     true,
			reason:   "eligible to borrow",
		},
		{
			name:     "unpaid_fines_never_block",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 1, UnpaidFines: 42.50},
			maxBooks: 3,
			want:     true,
			reason:   "eligible to borrow",
		},
		{
			name:     "inactive_wins_over_overdue",
			snap:     eligibility.Snapshot{IsActive: false, OverdueLoans: 2, ActiveLoans: 5},
			maxBooks: 3,
			want:     false,
			reason:   "borrower is inactive",
		},
		{
			name:     "overdue_wins_over_limit",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 5, OverdueLoans: 1},
			maxBooks: 3,
			want:     false,
			reason:   "borrower has overdue loans",
		},
		{
			name:     "custom_limit",
			snap:     eligibility.Snapshot{IsActive: true, ActiveLoans: 4},
			maxBooks: 5,
			want:     true,
			reason:   "eligible to borrow",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := eligibility.Decide(tc.snap, tc.maxBooks)
			assert.Equal(t, tc.want, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}
