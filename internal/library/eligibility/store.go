package eligibility

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// PrimarySnapshot gathers the whole borrower state in a single server-side
// aggregate query.
func (s *Store) PrimarySnapshot(ctx context.Context, tenantID, borrowerID string) (*Snapshot, error) {
	const q = `
	SELECT s.is_active,
	  (SELECT COUNT(*) FROM loans l
	    WHERE l.tenant_id = s.tenant_id AND l.borrower_id = s.student_id AND l.status = 'active') AS active_loans,
	  (SELECT COUNT(*) FROM loans l
	    WHERE l.tenant_id = s.tenant_id AND l.borrower_id = s.student_id AND l.status = 'active' AND l.due_date < NOW()) AS overdue_loans,
	  (SELECT COALESCE(SUM(f.amount), 0) FROM fines f
	    WHERE f.tenant_id = s.tenant_id AND f.borrower_id = s.student_id AND f.paid = 0) AS unpaid_fines
	FROM students s
	WHERE s.tenant_id = ? AND s.student_id = ?`

	var snap Snapshot
	var isActiveInt int
	err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(
		&isActiveInt, &snap.ActiveLoans, &snap.OverdueLoans, &snap.UnpaidFines,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("borrower not found")
		}
		return nil, err
	}
	snap.IsActive = isActiveInt != 0
	return &snap, nil
}

// Fallback queries, one state component at a time.

func (s *Store) CountActiveLoans(ctx context.Context, tenantID, borrowerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM loans WHERE tenant_id = ? AND borrower_id = ? AND status = 'active'`
	var n int
	if err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountOverdueLoans(ctx context.Context, tenantID, borrowerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM loans WHERE tenant_id = ? AND borrower_id = ? AND status = 'active' AND due_date < NOW()`
	var n int
	if err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) SumUnpaidFines(ctx context.Context, tenantID, borrowerID string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM fines WHERE tenant_id = ? AND borrower_id = ? AND paid = 0`
	var total float64
	if err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
