// Package members reads the Identity/Roster directory. Student records are
// owned elsewhere; circulation only cares about existence and the active flag.
package members

import (
	"context"
	"database/sql"
	"errors"
)

type Borrower struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// GetBorrower returns nil (not an error) when the borrower does not exist.
func (s *Store) GetBorrower(ctx context.Context, tenantID, borrowerID string) (*Borrower, error) {
	const q = `
	SELECT student_id, tenant_id, name, is_active, role
	FROM students WHERE tenant_id = ? AND student_id = ?`

	var b Borrower
	var isActiveInt int
	err := s.db.QueryRowContext(ctx, q, tenantID, borrowerID).Scan(
		&b.ID, &b.TenantID, &b.Name, &isActiveInt, &b.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.IsActive = isActiveInt != 0
	return &b, nil
}
