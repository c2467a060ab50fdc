package circulation

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"LIBRIS-backend/internal/library/fines"
	"LIBRIS-backend/internal/library/policy"
)

// ===== Interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service =====

const DefaultProcessingFee = 5.0

type Service struct {
	db     *sql.DB
	store  *Store
	policy *policy.Service
	clock  Clock
	id     IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:     db,
		store:  NewStore(db),
		policy: policy.NewService(db),
		clock:  realClock{},
		id:     ulidGen{},
	}
}

// IssueBook checks the borrower against the tenant policy and opens a loan.
// All gates run before any write; the writes (loan insert, copy flip,
// recount) share one transaction.
func (s *Service) IssueBook(ctx context.Context, tenantID string, req IssueRequest) (*IssueResponse, error) {
	if req.CopyID <= 0 {
		return nil, ErrInvalid("copy_id must be > 0")
	}
	if req.BorrowerID == "" {
		return nil, ErrInvalid("borrower_id is required")
	}

	pol, err := s.policy.GetPolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	dueDate := now.AddDate(0, 0, pol.LoanDurationDays)
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, ErrInvalid("invalid due_date format, expected YYYY-MM-DD")
		}
		if !parsed.After(now) {
			return nil, ErrInvalid("due_date must be in the future")
		}
		dueDate = parsed
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	loan := &Loan{
		LoanULID:   idStr,
		CopyID:     req.CopyID,
		BorrowerID: req.BorrowerID,
		TenantID:   tenantID,
		IssueDate:  now,
		DueDate:    dueDate,
		Status:     LoanActive,
	}
	if req.Notes != nil && *req.Notes != "" {
		loan.Notes.String = *req.Notes
		loan.Notes.Valid = true
	}

	if err := s.store.ExecIssue(ctx, loan, pol.MaxBooksPerStudent); err != nil {
		return nil, err
	}

	resp := &IssueResponse{Loan: buildLoanResponse(loan)}

	// Unpaid fines do not block issuance; they surface as an advisory.
	unpaid, err := s.store.UnpaidFineTotal(ctx, tenantID, req.BorrowerID)
	if err != nil {
		log.Printf("[WARN] issue: unpaid fine lookup failed: %v", err)
	} else if unpaid > 0 {
		w := fmt.Sprintf("borrower has unpaid fines totaling %s", fines.FormatUSD(unpaid))
		resp.Warning = &w
	}

	return resp, nil
}

// ReturnBook closes a loan. collected_amount is a condition/damage charge
// taken at the desk; it is not capped by (or mirrored into) the overdue fine.
func (s *Service) ReturnBook(ctx context.Context, tenantID, loanKey string, req ReturnRequest) (*ReturnResponse, error) {
	loanID, err := s.resolveLoanID(ctx, tenantID, loanKey)
	if err != nil {
		return nil, err
	}

	collected := 0.0
	if req.CollectedAmount != nil {
		if *req.CollectedAmount < 0 {
			return nil, ErrInvalid("collected_amount must not be negative")
		}
		collected = *req.CollectedAmount
	}

	pol, err := s.policy.GetPolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	fineULID, err := s.id.New()
	if err != nil {
		return nil, err
	}

	out, err := s.store.ExecReturn(ctx, tenantID, loanID, collected, pol.FinePerDay, s.clock.Now(), fineULID)
	if err != nil {
		return nil, err
	}

	return &ReturnResponse{
		Loan:      buildLoanResponse(&out.Loan),
		Fine:      out.Fine,
		DaysLate:  out.DaysLate,
		Collected: collected > 0,
	}, nil
}

// MarkBookLost retires the copy and bills replacement cost plus fee.
func (s *Service) MarkBookLost(ctx context.Context, tenantID, loanKey string, req LostRequest) (*LostResponse, error) {
	loanID, err := s.resolveLoanID(ctx, tenantID, loanKey)
	if err != nil {
		return nil, err
	}

	fee := DefaultProcessingFee
	if req.ProcessingFee != nil {
		if *req.ProcessingFee < 0 {
			return nil, ErrInvalid("processing_fee must not be negative")
		}
		fee = *req.ProcessingFee
	}

	fineULID, err := s.id.New()
	if err != nil {
		return nil, err
	}

	out, err := s.store.ExecMarkLost(ctx, tenantID, loanID, fee, s.clock.Now(), fineULID)
	if err != nil {
		return nil, err
	}

	return &LostResponse{
		Loan:      buildLoanResponse(&out.Loan),
		TotalCost: out.TotalCost,
	}, nil
}

// GetLoanByKey accepts a numeric loan id or a loan ULID.
func (s *Service) GetLoanByKey(ctx context.Context, tenantID, key string) (*LoanResponse, error) {
	if key == "" {
		return nil, ErrInvalid("id or ulid is required")
	}

	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		l, err := s.store.GetLoanByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		resp := buildLoanResponse(l)
		return &resp, nil
	}

	l, err := s.store.GetLoanByULID(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	resp := buildLoanResponse(l)
	return &resp, nil
}

func (s *Service) ListLoans(ctx context.Context, tenantID string, f LoanFilter, p Page) (LoanListResponse, error) {
	items, total, err := s.store.ListLoans(ctx, tenantID, f, p, s.clock.Now())
	if err != nil {
		return LoanListResponse{}, err
	}
	resp := LoanListResponse{Items: []LoanResponse{}, Total: total}
	for i := range items {
		resp.Items = append(resp.Items, buildLoanResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) resolveLoanID(ctx context.Context, tenantID, key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalid("loan id or ulid is required")
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	l, err := s.store.GetLoanByULID(ctx, tenantID, key)
	if err != nil {
		return 0, err
	}
	return l.LoanID, nil
}
