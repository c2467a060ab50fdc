package circulation

import "time"

// Pure fine arithmetic, no store access.

const day = 24 * time.Hour

// DaysLate is the number of whole-or-partial days between due and returned,
// ceiling division, clamped to >= 0.
func DaysLate(due, returned time.Time) int {
	if !returned.After(due) {
		return 0
	}
	d := returned.Sub(due)
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// OverdueFine is daysLate * perDay, zero when the return is on time.
func OverdueFine(due, returned time.Time, perDay float64) float64 {
	late := DaysLate(due, returned)
	if late == 0 {
		return 0
	}
	return float64(late) * perDay
}

// LostCost is the replacement cost of a lost copy: its purchase price
// (zero when unknown) plus the processing fee.
func LostCost(copyPrice, processingFee float64) float64 {
	if copyPrice < 0 {
		copyPrice = 0
	}
	return copyPrice + processingFee
}
