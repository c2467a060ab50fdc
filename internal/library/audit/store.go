package audit

import (
	"context"
	"database/sql"

	"LIBRIS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// LoanCopyMismatches finds loans whose copy status disagrees with the loan
// status. These are the rows a crash between the loan write and the copy
// write would leave behind.
func (s *Store) LoanCopyMismatches(ctx context.Context, q db.DBTX, tenantID string) ([]LoanMismatch, error) {
	const scanQ = `
	SELECT l.loan_id, l.copy_id, l.status, c.status
	FROM loans l
	JOIN book_copies c ON c.copy_id = l.copy_id
	WHERE l.tenant_id = ?
	  AND ((l.status = 'active' AND c.status <> 'issued')
	    OR (l.status = 'lost' AND c.status <> 'lost'))`

	rows, err := q.QueryContext(ctx, scanQ, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoanMismatch
	for rows.Next() {
		var m LoanMismatch
		if err := rows.Scan(&m.LoanID, &m.CopyID, &m.LoanStatus, &m.CopyStatus); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// OrphanIssuedCopies finds issued copies with no active loan backing them.
func (s *Store) OrphanIssuedCopies(ctx context.Context, q db.DBTX, tenantID string) ([]int64, error) {
	const scanQ = `
	SELECT c.copy_id
	FROM book_copies c
	LEFT JOIN loans l ON l.copy_id = c.copy_id AND l.status = 'active'
	WHERE c.tenant_id = ? AND c.status = 'issued' AND l.loan_id IS NULL`

	rows, err := q.QueryContext(ctx, scanQ, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CountMismatches finds books whose cached counts disagree with a recount.
func (s *Store) CountMismatches(ctx context.Context, q db.DBTX, tenantID string) ([]CountMismatch, error) {
	const scanQ = `
	SELECT b.book_id, b.total_copies, b.available_copies,
	  (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id) AS actual_total,
	  (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id AND c.status = 'available') AS actual_available
	FROM books b
	WHERE b.tenant_id = ?
	HAVING b.total_copies <> actual_total OR b.available_copies <> actual_available`

	rows, err := q.QueryContext(ctx, scanQ, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountMismatch
	for rows.Next() {
		var m CountMismatch
		if err := rows.Scan(&m.BookID, &m.CachedTotal, &m.CachedAvailable, &m.ActualTotal, &m.ActualAvailable); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecountAll rewrites the cached counts of every book in the tenant.
func (s *Store) RecountAll(ctx context.Context, tenantID string) (int64, error) {
	const q = `
	UPDATE books b
	SET b.total_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id),
	    b.available_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id AND c.status = 'available')
	WHERE b.tenant_id = ?`
	res, err := s.db.ExecContext(ctx, q, tenantID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
