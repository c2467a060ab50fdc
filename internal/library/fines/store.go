package fines

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const fineColumns = `
	fine_id, fine_ulid, loan_id, borrower_id, tenant_id, amount, paid, paid_at, reason, created_at`

func scanFineRow(row *sql.Row) (*Fine, error) {
	var f Fine
	var paidInt int
	err := row.Scan(
		&f.FineID, &f.FineULID, &f.LoanID, &f.BorrowerID, &f.TenantID,
		&f.Amount, &paidInt, &f.PaidAt, &f.Reason, &f.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("fine not found")
		}
		return nil, err
	}
	f.Paid = paidInt != 0
	return &f, nil
}

func (s *Store) GetFineByID(ctx context.Context, tenantID string, fineID int64) (*Fine, error) {
	q := `SELECT` + fineColumns + ` FROM fines WHERE tenant_id = ? AND fine_id = ?`
	return scanFineRow(s.db.QueryRowContext(ctx, q, tenantID, fineID))
}

func (s *Store) GetFineByULID(ctx context.Context, tenantID, ulid string) (*Fine, error) {
	q := `SELECT` + fineColumns + ` FROM fines WHERE tenant_id = ? AND fine_ulid = ?`
	return scanFineRow(s.db.QueryRowContext(ctx, q, tenantID, ulid))
}

func (s *Store) ListFines(ctx context.Context, tenantID string, f FineFilter, p Page) ([]Fine, int64, error) {
	var cond strings.Builder
	condArgs := []any{}

	if f.BorrowerID != nil && *f.BorrowerID != "" {
		cond.WriteString(" AND borrower_id = ?")
		condArgs = append(condArgs, *f.BorrowerID)
	}
	if f.UnpaidOnly {
		cond.WriteString(" AND paid = 0")
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

	q := `SELECT` + fineColumns + ` FROM fines WHERE tenant_id = ?` + cond.String() +
		fmt.Sprintf(` ORDER BY created_at %s LIMIT ? OFFSET ?`, order)
	args := append([]any{tenantID}, condArgs...)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Fine
	for rows.Next() {
		var fn Fine
		var paidInt int
		if err := rows.Scan(
			&fn.FineID, &fn.FineULID, &fn.LoanID, &fn.BorrowerID, &fn.TenantID,
			&fn.Amount, &paidInt, &fn.PaidAt, &fn.Reason, &fn.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		fn.Paid = paidInt != 0
		out = append(out, fn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cntQ := `SELECT COUNT(*) FROM fines WHERE tenant_id = ?` + cond.String()
	cntArgs := append([]any{tenantID}, condArgs...)
	var total int64
	if err := s.db.QueryRowContext(ctx, cntQ, cntArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkPaid flips the paid flag with a conditional write; zero rows affected
// means the fine was already settled (or absent).
func (s *Store) MarkPaid(ctx context.Context, tenantID string, fineID int64, now time.Time) (int64, error) {
	const q = `UPDATE fines SET paid = 1, paid_at = ? WHERE tenant_id = ? AND fine_id = ? AND paid = 0`
	res, err := s.db.ExecContext(ctx, q, now, tenantID, fineID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UnpaidTotal(ctx context.Context, tenantID, borrowerID string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM fines WHERE tenant_id = ? AND borrower_id = ? AND paid = 0`
	var total float64
	if err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
