package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeTransient       Code = "TRANSIENT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string       { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError  { return &APIError{Code: CodeConflict, Message: msg} }
func ErrTransient(msg string) *APIError { return &APIError{Code: CodeTransient, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

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
		case CodeTransient:
			return 503
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

// ===== books =====

func (s *Service) CreateBook(ctx context.Context, tenantID string, in CreateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return BookResponse{}, ErrInvalid("title and author are required")
	}

	b := &Book{
		TenantID: tenantID,
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
	}

	if in.ISBN != nil && *in.ISBN != "" {
		norm, ok := NormalizeISBN(*in.ISBN)
		if !ok {
			return BookResponse{}, ErrInvalid("isbn must be a valid 10- or 13-digit ISBN")
		}
		b.ISBN = sql.NullString{String: norm, Valid: true}
	}
	if in.PublicationYear != nil {
		if !ValidPublicationYear(*in.PublicationYear, s.clock.Now().Year()) {
			return BookResponse{}, ErrInvalid("publication_year out of range")
		}
		b.PublicationYear = sql.NullInt64{Int64: int64(*in.PublicationYear), Valid: true}
	}

	if err := s.store.InsertBook(ctx, b); err != nil {
		return BookResponse{}, err
	}
	out, err := s.store.GetBookByID(ctx, tenantID, b.BookID)
	if err != nil {
		return BookResponse{}, err
	}
	return buildBookResponse(out), nil
}

func (s *Service) GetBook(ctx context.Context, tenantID string, bookID int64) (BookResponse, error) {
	b, err := s.store.GetBookByID(ctx, tenantID, bookID)
	if err != nil {
		return BookResponse{}, err
	}
	return buildBookResponse(b), nil
}

func (s *Service) ListBooks(ctx context.Context, tenantID string, q BookSearchQuery, p Page) (BookListResponse, error) {
	items, total, err := s.store.ListBooks(ctx, tenantID, q, p)
	if err != nil {
		return BookListResponse{}, err
	}
	resp := BookListResponse{Items: []BookResponse{}, Meta: ListMeta{Total: total, Limit: p.Limit, Offset: p.Offset}}
	for i := range items {
		resp.Items = append(resp.Items, buildBookResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) UpdateBook(ctx context.Context, tenantID string, bookID int64, in UpdateBookRequest) (BookResponse, error) {
	sets := []string{}
	args := []any{}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return BookResponse{}, ErrInvalid("title must not be empty")
		}
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*in.Title))
	}
	if in.Author != nil {
		if strings.TrimSpace(*in.Author) == "" {
			return BookResponse{}, ErrInvalid("author must not be empty")
		}
		sets = append(sets, "author = ?")
		args = append(args, strings.TrimSpace(*in.Author))
	}
	if in.ISBN != nil {
		if *in.ISBN == "" {
			sets = append(sets, "isbn = NULL")
		} else {
			norm, ok := NormalizeISBN(*in.ISBN)
			if !ok {
				return BookResponse{}, ErrInvalid("isbn must be a valid 10- or 13-digit ISBN")
			}
			sets = append(sets, "isbn = ?")
			args = append(args, norm)
		}
	}
	if in.PublicationYear != nil {
		if !ValidPublicationYear(*in.PublicationYear, s.clock.Now().Year()) {
			return BookResponse{}, ErrInvalid("publication_year out of range")
		}
		sets = append(sets, "publication_year = ?")
		args = append(args, *in.PublicationYear)
	}

	if len(sets) > 0 {
		if err := s.store.UpdateBookPartial(ctx, tenantID, bookID, sets, args); err != nil {
			return BookResponse{}, err
		}
	}
	return s.GetBook(ctx, tenantID, bookID)
}

func (s *Service) DeleteBook(ctx context.Context, tenantID string, bookID int64) error {
	return s.store.DeleteBook(ctx, tenantID, bookID)
}

// ===== copies =====

func (s *Service) CreateCopies(ctx context.Context, tenantID string, bookID int64, in CreateCopiesRequest) (CopyListResponse, error) {
	if in.Count < 1 || in.Count > MaxCopiesPerBatch {
		return CopyListResponse{}, ErrInvalid(fmt.Sprintf("count must be between 1 and %d", MaxCopiesPerBatch))
	}
	if _, err := s.store.GetBookByID(ctx, tenantID, bookID); err != nil {
		return CopyListResponse{}, err
	}

	meta, err := copyMetaFromRequest(in.PurchaseDate, in.Price, in.ConditionNotes)
	if err != nil {
		return CopyListResponse{}, err
	}

	copies, err := s.store.ReserveAndInsertCopies(ctx, bookID, tenantID, in.Count, meta)
	if err != nil {
		return CopyListResponse{}, err
	}

	if err := s.store.RecountBook(ctx, bookID); err != nil {
		return CopyListResponse{}, err
	}

	resp := CopyListResponse{Items: []CopyResponse{}, Meta: ListMeta{Total: int64(len(copies)), Limit: len(copies)}}
	for i := range copies {
		resp.Items = append(resp.Items, buildCopyResponse(&copies[i]))
	}
	return resp, nil
}

func (s *Service) GetCopy(ctx context.Context, tenantID string, copyID int64) (CopyResponse, error) {
	c, err := s.store.GetCopyByID(ctx, tenantID, copyID)
	if err != nil {
		return CopyResponse{}, err
	}
	return buildCopyResponse(c), nil
}

func (s *Service) ListCopies(ctx context.Context, tenantID string, bookID int64, f CopyFilter, p Page) (CopyListResponse, error) {
	if f.Status != nil && *f.Status != "" && !ValidCopyStatus(*f.Status) {
		return CopyListResponse{}, ErrInvalid("unknown copy status")
	}
	items, total, err := s.store.ListCopiesByBook(ctx, tenantID, bookID, f, p)
	if err != nil {
		return CopyListResponse{}, err
	}
	resp := CopyListResponse{Items: []CopyResponse{}, Meta: ListMeta{Total: total, Limit: p.Limit, Offset: p.Offset}}
	for i := range items {
		resp.Items = append(resp.Items, buildCopyResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) UpdateCopy(ctx context.Context, tenantID string, copyID int64, in UpdateCopyRequest) (CopyResponse, error) {
	cur, err := s.store.GetCopyByID(ctx, tenantID, copyID)
	if err != nil {
		return CopyResponse{}, err
	}

	sets := []string{}
	args := []any{}

	if in.Status != nil {
		if !ValidCopyStatus(*in.Status) {
			return CopyResponse{}, ErrInvalid("unknown copy status")
		}
		// Issue/return transitions belong to circulation.
		if CopyStatus(*in.Status) == StatusIssued {
			return CopyResponse{}, ErrInvalid("issued status is managed by circulation")
		}
		if cur.Status == StatusIssued {
			return CopyResponse{}, ErrConflict("copy is currently issued")
		}
		sets = append(sets, "status = ?")
		args = append(args, *in.Status)
	}
	if in.PurchaseDate != nil {
		if *in.PurchaseDate == "" {
			sets = append(sets, "purchase_date = NULL")
		} else {
			t, err := time.Parse("2006-01-02", *in.PurchaseDate)
			if err != nil {
				return CopyResponse{}, ErrInvalid("invalid purchase_date format, expected YYYY-MM-DD")
			}
			sets = append(sets, "purchase_date = ?")
			args = append(args, t)
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return CopyResponse{}, ErrInvalid("price must not be negative")
		}
		sets = append(sets, "price = ?")
		args = append(args, *in.Price)
	}
	if in.ConditionNotes != nil {
		sets = append(sets, "condition_notes = ?")
		args = append(args, *in.ConditionNotes)
	}

	if len(sets) > 0 {
		if err := s.store.UpdateCopyPartial(ctx, tenantID, copyID, sets, args); err != nil {
			return CopyResponse{}, err
		}
		if err := s.store.RecountBook(ctx, cur.BookID); err != nil {
			return CopyResponse{}, err
		}
	}
	return s.GetCopy(ctx, tenantID, copyID)
}

func (s *Service) DeleteCopy(ctx context.Context, tenantID string, copyID int64) error {
	cur, err := s.store.GetCopyByID(ctx, tenantID, copyID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCopy(ctx, tenantID, copyID); err != nil {
		return err
	}
	return s.store.RecountBook(ctx, cur.BookID)
}

func copyMetaFromRequest(purchaseDate *string, price *float64, notes *string) (CopyMeta, error) {
	var meta CopyMeta
	if purchaseDate != nil && *purchaseDate != "" {
		t, err := time.Parse("2006-01-02", *purchaseDate)
		if err != nil {
			return meta, ErrInvalid("invalid purchase_date format, expected YYYY-MM-DD")
		}
		meta.PurchaseDate = sql.NullTime{Time: t, Valid: true}
	}
	if price != nil {
		if *price < 0 {
			return meta, ErrInvalid("price must not be negative")
		}
		meta.Price = sql.NullFloat64{Float64: *price, Valid: true}
	}
	if notes != nil && *notes != "" {
		meta.ConditionNotes = sql.NullString{String: *notes, Valid: true}
	}
	return meta, nil
}
