package eligibility

// Snapshot is the borrower state both computation paths reduce to before
// deciding. Keeping the decision itself pure means the primary aggregate
// query and the fallback recomputation cannot disagree unless their
// snapshots disagree.
type Snapshot struct {
	IsActive     bool
	ActiveLoans  int
	OverdueLoans int
	UnpaidFines  float64
}

// Decide turns a snapshot into the borrow/no-borrow verdict with its
// diagnostic message. Unpaid fines never block borrowing.
func Decide(s Snapshot, maxBooks int) (bool, string) {
	if !s.IsActive {
		return false, "borrower is inactive"
	}
	if s.OverdueLoans > 0 {
		return false, "borrower has overdue loans"
	}
	if s.ActiveLoans >= maxBooks {
		return false, "loan limit reached"
	}
	return true, "eligible to borrow"
}
