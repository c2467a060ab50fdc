package fines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, store: NewStore(db), clock: realClock{}}
}

func (s *Service) GetFineByKey(ctx context.Context, tenantID, key string) (*FineResponse, error) {
	f, err := s.resolveFine(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	resp := buildFineResponse(f)
	return &resp, nil
}

func (s *Service) ListFines(ctx context.Context, tenantID string, f FineFilter, p Page) (FineListResponse, error) {
	items, total, err := s.store.ListFines(ctx, tenantID, f, p)
	if err != nil {
		return FineListResponse{}, err
	}
	resp := FineListResponse{Items: []FineResponse{}, Total: total}
	for i := range items {
		resp.Items = append(resp.Items, buildFineResponse(&items[i]))
	}
	return resp, nil
}

// PayFine settles an open fine. The conditional write makes a repeated
// payment attempt a CONFLICT rather than a silent second success.
func (s *Service) PayFine(ctx context.Context, tenantID, key string) (*PayFineResponse, error) {
	f, err := s.resolveFine(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if f.Paid {
		return nil, ErrConflict("fine already paid")
	}

	aff, err := s.store.MarkPaid(ctx, tenantID, f.FineID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if aff == 0 {
		return nil, ErrConflict("fine already paid")
	}

	paid, err := s.store.GetFineByID(ctx, tenantID, f.FineID)
	if err != nil {
		return nil, err
	}

	return &PayFineResponse{
		Fine:    buildFineResponse(paid),
		Receipt: fmt.Sprintf("Received %s for: %s", FormatUSD(paid.Amount), paid.Reason),
	}, nil
}

func (s *Service) resolveFine(ctx context.Context, tenantID, key string) (*Fine, error) {
	if key == "" {
		return nil, ErrInvalid("id or ulid is required")
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return s.store.GetFineByID(ctx, tenantID, id)
	}
	return s.store.GetFineByULID(ctx, tenantID, key)
}

func (s *Service) UnpaidTotal(ctx context.Context, tenantID, borrowerID string) (UnpaidTotalResponse, error) {
	if borrowerID == "" {
		return UnpaidTotalResponse{}, ErrInvalid("borrower_id is required")
	}
	total, err := s.store.UnpaidTotal(ctx, tenantID, borrowerID)
	if err != nil {
		return UnpaidTotalResponse{}, err
	}
	return UnpaidTotalResponse{BorrowerID: borrowerID, Total: total}, nil
}
