package eligibility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"LIBRIS-backend/internal/library/fines"
	"LIBRIS-backend/internal/library/members"
	"LIBRIS-backend/internal/library/policy"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// fallbackMaxBooks is the limit the fallback path has always applied,
// independent of the tenant policy the primary path reads. Known
// inconsistency carried over from the original system; which value is
// authoritative is a product decision, so the divergence is logged, not
// patched.
const fallbackMaxBooks = 3

// ===== Service =====

type Service struct {
	db      *sql.DB
	store   *Store
	members *members.Store
	policy  *policy.Service
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:      db,
		store:   NewStore(db),
		members: members.NewStore(db),
		policy:  policy.NewService(db),
	}
}

// Check answers "may this borrower take another book out". The aggregate
// query is the fast path; any infrastructure failure there drops to the
// fallback recomputation.
func (s *Service) Check(ctx context.Context, tenantID, borrowerID string) (*Response, error) {
	if borrowerID == "" {
		return nil, ErrInvalid("borrower_id is required")
	}

	pol, err := s.policy.GetPolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp, err := s.CheckPrimary(ctx, tenantID, borrowerID, pol.MaxBooksPerStudent)
	if err == nil {
		return resp, nil
	}
	var api *APIError
	if errors.As(err, &api) {
		// Domain outcome (e.g. unknown borrower), not an aggregate failure.
		return nil, err
	}

	log.Printf("[WARN] eligibility: aggregate path unavailable, using fallback: %v", err)
	if pol.MaxBooksPerStudent != fallbackMaxBooks {
		log.Printf("[WARN] eligibility: fallback limit %d diverges from tenant policy %d",
			fallbackMaxBooks, pol.MaxBooksPerStudent)
	}
	return s.CheckFallback(ctx, tenantID, borrowerID)
}

// CheckPrimary decides from the single aggregate query using the tenant
// policy limit.
func (s *Service) CheckPrimary(ctx context.Context, tenantID, borrowerID string, maxBooks int) (*Response, error) {
	snap, err := s.store.PrimarySnapshot(ctx, tenantID, borrowerID)
	if err != nil {
		return nil, err
	}
	return buildResponse(*snap, maxBooks), nil
}

// CheckFallback independently recomputes the same decision from separate
// queries, with its own hardcoded limit.
func (s *Service) CheckFallback(ctx context.Context, tenantID, borrowerID string) (*Response, error) {
	b, err := s.members.GetBorrower(ctx, tenantID, borrowerID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("borrower not found")
	}

	snap := Snapshot{IsActive: b.IsActive}
	if snap.ActiveLoans, err = s.store.CountActiveLoans(ctx, tenantID, borrowerID); err != nil {
		return nil, err
	}
	if snap.OverdueLoans, err = s.store.CountOverdueLoans(ctx, tenantID, borrowerID); err != nil {
		return nil, err
	}
	if snap.UnpaidFines, err = s.store.SumUnpaidFines(ctx, tenantID, borrowerID); err != nil {
		return nil, err
	}

	return buildResponse(snap, fallbackMaxBooks), nil
}

func buildResponse(snap Snapshot, maxBooks int) *Response {
	eligible, msg := Decide(snap, maxBooks)
	resp := &Response{
		Eligible:     eligible,
		Message:      msg,
		ActiveLoans:  snap.ActiveLoans,
		MaxBooks:     maxBooks,
		OverdueLoans: snap.OverdueLoans,
		UnpaidFines:  snap.UnpaidFines,
		Warnings:     []string{},
	}
	if snap.UnpaidFines > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("unpaid fines totaling %s", fines.FormatUSD(snap.UnpaidFines)))
	}
	return resp
}
