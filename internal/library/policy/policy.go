// Package policy reads the per-tenant circulation policy. The policy store
// itself is owned by the wider school-administration system; this engine
// only reads it and falls back to documented defaults when a tenant has no
// row (or has NULL fields).
package policy

import (
	"context"
	"database/sql"
)

const (
	DefaultLoanDurationDays   = 14
	DefaultFinePerDay         = 0.50
	DefaultMaxBooksPerStudent = 3
)

type Policy struct {
	LoanDurationDays   int     `json:"loan_duration_days"`
	FinePerDay         float64 `json:"fine_per_day"`
	MaxBooksPerStudent int     `json:"max_books_per_student"`
}

// Defaults returns the policy applied when a tenant has no configuration.
func Defaults() Policy {
	return Policy{
		LoanDurationDays:   DefaultLoanDurationDays,
		FinePerDay:         DefaultFinePerDay,
		MaxBooksPerStudent: DefaultMaxBooksPerStudent,
	}
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) GetPolicy(ctx context.Context, tenantID string) (Policy, error) {
	const q = `
	SELECT loan_duration_days, fine_per_day, max_books_per_student
	FROM library_policies WHERE tenant_id = ?`

	var (
		duration sql.NullInt64
		perDay   sql.NullFloat64
		maxBooks sql.NullInt64
	)
	pol := Defaults()

	err := s.db.QueryRowContext(ctx, q, tenantID).Scan(&duration, &perDay, &maxBooks)
	if err == sql.ErrNoRows {
		return pol, nil
	}
	if err != nil {
		return pol, err
	}

	if duration.Valid && duration.Int64 > 0 {
		pol.LoanDurationDays = int(duration.Int64)
	}
	if perDay.Valid && perDay.Float64 >= 0 {
		pol.FinePerDay = perDay.Float64
	}
	if maxBooks.Valid && maxBooks.Int64 > 0 {
		pol.MaxBooksPerStudent = int(maxBooks.Int64)
	}
	return pol, nil
}
