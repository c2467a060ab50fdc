// Package audit is the operator-facing repair scan. Circulation's
// multi-write flows run in transactions, but the scan stays around to
// detect drift introduced outside the engine (manual DB edits, imports,
// older data).
package audit

import (
	"context"
	"database/sql"

	"LIBRIS-backend/internal/platform/db"
)

type LoanMismatch struct {
	LoanID     int64  `json:"loan_id"`
	CopyID     int64  `json:"copy_id"`
	LoanStatus string `json:"loan_status"`
	CopyStatus string `json:"copy_status"`
}

type CountMismatch struct {
	BookID          int64 `json:"book_id"`
	CachedTotal     int   `json:"cached_total"`
	CachedAvailable int   `json:"cached_available"`
	ActualTotal     int   `json:"actual_total"`
	ActualAvailable int   `json:"actual_available"`
}

type ConsistencyReport struct {
	Clean              bool            `json:"clean"`
	LoanMismatches     []LoanMismatch  `json:"loan_mismatches"`
	OrphanIssuedCopies []int64         `json:"orphan_issued_copies"`
	CountMismatches    []CountMismatch `json:"count_mismatches"`
}

type RecountResult struct {
	BooksUpdated int64 `json:"books_updated"`
}

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, store: NewStore(db)}
}

// ScanConsistency runs the three scans inside one read-only transaction so
// the report reflects a single point in time.
func (s *Service) ScanConsistency(ctx context.Context, tenantID string) (*ConsistencyReport, error) {
	report := &ConsistencyReport{
		LoanMismatches:     []LoanMismatch{},
		OrphanIssuedCopies: []int64{},
		CountMismatches:    []CountMismatch{},
	}

	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		mismatches, err := s.store.LoanCopyMismatches(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		report.LoanMismatches = append(report.LoanMismatches, mismatches...)

		orphans, err := s.store.OrphanIssuedCopies(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		report.OrphanIssuedCopies = append(report.OrphanIssuedCopies, orphans...)

		counts, err := s.store.CountMismatches(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		report.CountMismatches = append(report.CountMismatches, counts...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Clean = len(report.LoanMismatches) == 0 &&
		len(report.OrphanIssuedCopies) == 0 &&
		len(report.CountMismatches) == 0
	return report, nil
}

func (s *Service) RecountAll(ctx context.Context, tenantID string) (*RecountResult, error) {
	n, err := s.store.RecountAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &RecountResult{BooksUpdated: n}, nil
}
