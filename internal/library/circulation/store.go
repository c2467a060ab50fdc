package circulation

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"LIBRIS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ===== tx helpers =====

func lockCopyRow(ctx context.Context, tx db.DBTX, tenantID string, copyID int64) (bookID int64, status string, price sql.NullFloat64, err error) {
	const q = `
	SELECT book_id, status, price FROM book_copies
	WHERE tenant_id = ? AND copy_id = ? FOR UPDATE`
	row := tx.QueryRowContext(ctx, q, tenantID, copyID)
	if err = row.Scan(&bookID, &status, &price); err != nil {
		if err == sql.ErrNoRows {
			return 0, "", price, ErrNotFound("copy not found")
		}
		return 0, "", price, err
	}
	return bookID, status, price, nil
}

func recountBookTx(ctx context.Context, tx db.DBTX, bookID int64) error {
	const q = `
	UPDATE books b
	SET b.total_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id),
	    b.available_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id AND c.status = 'available')
	WHERE b.book_id = ?`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func insertFineTx(ctx context.Context, tx db.DBTX, fineULID string, loanID int64, borrowerID, tenantID string, amount float64, reason string) error {
	const q = `
	INSERT INTO fines
	(fine_ulid, loan_id, borrower_id, tenant_id, amount, paid, reason, created_at)
	VALUES (?, ?, ?, ?, ?, 0, ?, CURRENT_TIMESTAMP)`
	_, err := tx.ExecContext(ctx, q, fineULID, loanID, borrowerID, tenantID, amount, reason)
	return err
}

// ===== Transactional flows =====

// ExecIssue runs the full issue flow in one transaction: eligibility gates,
// loan insert, copy status flip, book recount.
func (s *Store) ExecIssue(ctx context.Context, m *Loan, maxBooks int) error {
	return db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		// 1. Copy must exist and be available.
		bookID, status, _, err := lockCopyRow(ctx, tx, m.TenantID, m.CopyID)
		if err != nil {
			return err
		}
		if status != "available" {
			return ErrConflict("copy not available")
		}

		// 2. Borrower must exist and be active.
		var isActiveInt int
		err = tx.QueryRowContext(ctx,
			`SELECT is_active FROM students WHERE tenant_id = ? AND student_id = ?`,
			m.TenantID, m.BorrowerID,
		).Scan(&isActiveInt)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("borrower not found")
			}
			return err
		}
		if isActiveInt == 0 {
			return ErrPolicy("borrower is inactive")
		}

		// 3. No overdue holds.
		var overdue int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM loans WHERE tenant_id = ? AND borrower_id = ? AND status = 'active' AND due_date < ?`,
			m.TenantID, m.BorrowerID, m.IssueDate,
		).Scan(&overdue)
		if err != nil {
			return err
		}
		if overdue > 0 {
			return ErrPolicy("borrower has overdue loans")
		}

		// 4. Loan limit.
		var active int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM loans WHERE tenant_id = ? AND borrower_id = ? AND status = 'active'`,
			m.TenantID, m.BorrowerID,
		).Scan(&active)
		if err != nil {
			return err
		}
		if active >= int64(maxBooks) {
			return ErrPolicy("loan limit reached")
		}

		// 5. Insert loan.
		const insQ = `
		INSERT INTO loans
		(loan_ulid, copy_id, borrower_id, tenant_id, issue_date, due_date, status, fine_amount, collected_amount, notes)
		VALUES (?, ?, ?, ?, ?, ?, 'active', 0, 0, ?)`
		res, err := tx.ExecContext(ctx, insQ,
			m.LoanULID, m.CopyID, m.BorrowerID, m.TenantID, m.IssueDate, m.DueDate, m.Notes,
		)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		m.LoanID = id

		// 6. Flip the copy with a conditional write. The WHERE status predicate
		// is the actual guard against double issuance: a concurrent issuer that
		// got past the read loses here with zero rows affected.
		casRes, err := tx.ExecContext(ctx,
			`UPDATE book_copies SET status = 'issued' WHERE tenant_id = ? AND copy_id = ? AND status = 'available'`,
			m.TenantID, m.CopyID,
		)
		if err != nil {
			return err
		}
		if aff, _ := casRes.RowsAffected(); aff != 1 {
			return ErrConflict("copy not available")
		}

		// 7. Recount the parent book.
		return recountBookTx(ctx, tx, bookID)
	})
}

type ReturnOutcome struct {
	Loan     Loan
	Fine     float64
	DaysLate int
}

// ExecReturn closes an active loan: overdue fine from the pure calculator,
// condition charge recorded as-is, copy back to available, recount, and a
// fine row for the overdue component only.
func (s *Store) ExecReturn(ctx context.Context, tenantID string, loanID int64, collected, perDay float64, now time.Time, fineULID string) (*ReturnOutcome, error) {
	var out *ReturnOutcome
	err := db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		l, bookID, err := lockLoanRow(ctx, tx, tenantID, loanID)
		if err != nil {
			return err
		}
		switch l.Status {
		case LoanReturned:
			return ErrConflict("loan already returned")
		case LoanLost:
			// A lost copy never goes back to available through this engine.
			return ErrConflict("loan already marked lost")
		}

		daysLate := DaysLate(l.DueDate, now)
		fine := OverdueFine(l.DueDate, now, perDay)

		updRes, err := tx.ExecContext(ctx,
			`UPDATE loans SET return_date = ?, status = 'returned', fine_amount = ?, collected_amount = ? WHERE loan_id = ? AND status = 'active'`,
			now, fine, collected, l.LoanID,
		)
		if err != nil {
			return err
		}
		if aff, _ := updRes.RowsAffected(); aff != 1 {
			return ErrConflict("loan already returned")
		}

		// The copy should be issued here; a mismatch is left for the audit scan.
		copyRes, err := tx.ExecContext(ctx,
			`UPDATE book_copies SET status = 'available' WHERE tenant_id = ? AND copy_id = ? AND status = 'issued'`,
			tenantID, l.CopyID,
		)
		if err != nil {
			return err
		}
		if aff, _ := copyRes.RowsAffected(); aff != 1 {
			log.Printf("[WARN] return: copy %d was not in issued state", l.CopyID)
		}

		if err := recountBookTx(ctx, tx, bookID); err != nil {
			return err
		}

		if fine > 0 {
			reason := fmt.Sprintf("Late return - %d days overdue", daysLate)
			if err := insertFineTx(ctx, tx, fineULID, l.LoanID, l.BorrowerID, tenantID, fine, reason); err != nil {
				return err
			}
		}

		l.Status = LoanReturned
		l.ReturnDate = sql.NullTime{Time: now, Valid: true}
		l.FineAmount = fine
		l.CollectedAmount = collected
		out = &ReturnOutcome{Loan: *l, Fine: fine, DaysLate: daysLate}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type LostOutcome struct {
	Loan      Loan
	TotalCost float64
}

// ExecMarkLost retires the copy and charges replacement cost plus fee.
func (s *Store) ExecMarkLost(ctx context.Context, tenantID string, loanID int64, processingFee float64, now time.Time, fineULID string) (*LostOutcome, error) {
	var out *LostOutcome
	err := db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		l, bookID, err := lockLoanRow(ctx, tx, tenantID, loanID)
		if err != nil {
			return err
		}
		switch l.Status {
		case LoanLost:
			return ErrConflict("loan already marked lost")
		case LoanReturned:
			return ErrConflict("loan already returned")
		}

		var price sql.NullFloat64
		err = tx.QueryRowContext(ctx, `SELECT price FROM book_copies WHERE tenant_id = ? AND copy_id = ?`, tenantID, l.CopyID).Scan(&price)
		if err != nil {
			return err
		}
		copyPrice := 0.0
		if price.Valid {
			copyPrice = price.Float64
		}
		totalCost := LostCost(copyPrice, processingFee)

		updRes, err := tx.ExecContext(ctx,
			`UPDATE loans SET status = 'lost', fine_amount = ? WHERE loan_id = ? AND status = 'active'`,
			totalCost, l.LoanID,
		)
		if err != nil {
			return err
		}
		if aff, _ := updRes.RowsAffected(); aff != 1 {
			return ErrConflict("loan already closed")
		}

		copyRes, err := tx.ExecContext(ctx,
			`UPDATE book_copies SET status = 'lost' WHERE tenant_id = ? AND copy_id = ? AND status = 'issued'`,
			tenantID, l.CopyID,
		)
		if err != nil {
			return err
		}
		if aff, _ := copyRes.RowsAffected(); aff != 1 {
			log.Printf("[WARN] mark lost: copy %d was not in issued state", l.CopyID)
		}

		if err := recountBookTx(ctx, tx, bookID); err != nil {
			return err
		}

		reason := fmt.Sprintf("Lost book - replacement cost %.2f + processing fee %.2f", copyPrice, processingFee)
		if err := insertFineTx(ctx, tx, fineULID, l.LoanID, l.BorrowerID, tenantID, totalCost, reason); err != nil {
			return err
		}

		l.Status = LoanLost
		l.FineAmount = totalCost
		out = &LostOutcome{Loan: *l, TotalCost: totalCost}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockLoanRow(ctx context.Context, tx db.DBTX, tenantID string, loanID int64) (*Loan, int64, error) {
	const q = `
	SELECT l.loan_id, l.loan_ulid, l.copy_id, l.borrower_id, l.tenant_id,
	       l.issue_date, l.due_date, l.return_date, l.status, l.fine_amount, l.collected_amount, l.notes,
	       c.book_id
	FROM loans l
	JOIN book_copies c ON c.copy_id = l.copy_id
	WHERE l.tenant_id = ? AND l.loan_id = ?
	FOR UPDATE`
	var l Loan
	var bookID int64
	err := tx.QueryRowContext(ctx, q, tenantID, loanID).Scan(
		&l.LoanID, &l.LoanULID, &l.CopyID, &l.BorrowerID, &l.TenantID,
		&l.IssueDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.FineAmount, &l.CollectedAmount, &l.Notes,
		&bookID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, ErrNotFound("loan not found")
		}
		return nil, 0, err
	}
	return &l, bookID, nil
}

// ===== Queries =====

const loanColumns = `
	loan_id, loan_ulid, copy_id, borrower_id, tenant_id,
	issue_date, due_date, return_date, status, fine_amount, collected_amount, notes`

func scanLoan(row *sql.Row) (*Loan, error) {
	var l Loan
	err := row.Scan(
		&l.LoanID, &l.LoanULID, &l.CopyID, &l.BorrowerID, &l.TenantID,
		&l.IssueDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.FineAmount, &l.CollectedAmount, &l.Notes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("loan not found")
		}
		return nil, err
	}
	return &l, nil
}

func (s *Store) GetLoanByID(ctx context.Context, tenantID string, loanID int64) (*Loan, error) {
	q := `SELECT` + loanColumns + ` FROM loans WHERE tenant_id = ? AND loan_id = ?`
	return scanLoan(s.db.QueryRowContext(ctx, q, tenantID, loanID))
}

func (s *Store) GetLoanByULID(ctx context.Context, tenantID, ulid string) (*Loan, error) {
	q := `SELECT` + loanColumns + ` FROM loans WHERE tenant_id = ? AND loan_ulid = ?`
	return scanLoan(s.db.QueryRowContext(ctx, q, tenantID, ulid))
}

func (s *Store) ListLoans(ctx context.Context, tenantID string, f LoanFilter, p Page, now time.Time) ([]Loan, int64, error) {
	var cond strings.Builder
	condArgs := []any{}

	if f.BorrowerID != nil && *f.BorrowerID != "" {
		cond.WriteString(" AND borrower_id = ?")
		condArgs = append(condArgs, *f.BorrowerID)
	}
	if f.Status != nil && *f.Status != "" {
		cond.WriteString(" AND status = ?")
		condArgs = append(condArgs, *f.Status)
	}
	if f.OverdueOnly {
		cond.WriteString(" AND status = 'active' AND due_date < ?")
		condArgs = append(condArgs, now)
	}
	if f.From != nil {
		cond.WriteString(" AND issue_date >= ?")
		condArgs = append(condArgs, *f.From)
	}
	if f.To != nil {
		cond.WriteString(" AND issue_date < ?")
		condArgs = append(condArgs, *f.To)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := `SELECT` + loanColumns + ` FROM loans WHERE tenant_id = ?` + cond.String() +
		fmt.Sprintf(` ORDER BY issue_date %s LIMIT ? OFFSET ?`, order)
	args := append([]any{tenantID}, condArgs...)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		var l Loan
		if err := rows.Scan(
			&l.LoanID, &l.LoanULID, &l.CopyID, &l.BorrowerID, &l.TenantID,
			&l.IssueDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.FineAmount, &l.CollectedAmount, &l.Notes,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cntQ := `SELECT COUNT(*) FROM loans WHERE tenant_id = ?` + cond.String()
	cntArgs := append([]any{tenantID}, condArgs...)
	var total int64
	if err := s.db.QueryRowContext(ctx, cntQ, cntArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UnpaidFineTotal feeds the non-fatal advisory attached to an issue.
func (s *Store) UnpaidFineTotal(ctx context.Context, tenantID, borrowerID string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM fines WHERE tenant_id = ? AND borrower_id = ? AND paid = 0`
	var total float64
	if err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
