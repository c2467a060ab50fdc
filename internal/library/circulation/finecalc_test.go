package circulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"LIBRIS-backend/internal/library/circulation"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysLate(t *testing.T) {
	tests := []struct {
		name     string
		due      time.Time
		returned time.Time
		want     int
	}{
		{name: "same_day", due: date(2024, 1, 1), returned: date(2024, 1, 1), want: 0},
		{name: "returned_early", due: date(2024, 1, 10), returned: date(2024, 1, 5), want: 0},
		{name: "three_days_late", due: date(2024, 1, 1), returned: date(2024, 1, 4), want: 3},
		{name: "partial_day_rounds_up", due: date(2024, 1, 1), returned: date(2024, 1, 1).Add(6 * time.Hour), want: 1},
		{name: "one_day_plus_hour_rounds_to_two", due: date(2024, 1, 1), returned: date(2024, 1, 2).Add(time.Hour), want: 2},
		{name: "exact_day_boundary", due: date(2024, 1, 1), returned: date(2024, 1, 2), want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, circulation.DaysLate(tc.due, tc.returned))
		})
	}
}

func TestOverdueFine(t *testing.T) {
	tests := []struct {
		name     string
		due      time.Time
		returned time.Time
		perDay   float64
		want     float64
	}{
		{name: "on_time_no_fine", due: date(2024, 1, 1), returned: date(2024, 1, 1), perDay: 0.5, want: 0},
		{name: "three_days_at_fifty_cents", due: date(2024, 1, 1), returned: date(2024, 1, 4), perDay: 0.5, want: 1.5},
		{name: "four_days_at_a_dollar", due: date(2024, 2, 1), returned: date(2024, 2, 5), perDay: 1.0, want: 4},
		{name: "zero_rate", due: date(2024, 1, 1), returned: date(2024, 1, 10), perDay: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, circulation.OverdueFine(tc.due, tc.returned, tc.perDay), 1e-9)
		})
	}
}

func TestLostCost(t *testing.T) {
	assert.InDelta(t, 30.0, circulation.LostCost(25.0, 5.0), 1e-9)
	assert.InDelta(t, 5.0, circulation.LostCost(0, 5.0), 1e-9)
	// Unknown price stored as a negative sentinel never reduces the fee.
	assert.InDelta(t, 5.0, circulation.LostCost(-1, 5.0), 1e-9)
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid_argument", err: circulation.ErrInvalid("bad"), want: 400},
		{name: "not_found", err: circulation.ErrNotFound("missing"), want: 404},
		{name: "conflict", err: circulation.ErrConflict("busy"), want: 409},
		{name: "policy_violation", err: circulation.ErrPolicy("limit"), want: 422},
		{name: "internal", err: circulation.ErrInternal("boom"), want: 500},
		{name: "plain_error", err: assert.AnError, want: 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, circulation.ToHTTPStatus(tc.err))
		})
	}
}
