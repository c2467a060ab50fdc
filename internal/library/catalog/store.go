package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ===== books =====

func (s *Store) InsertBook(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(tenant_id, title, author, isbn, publication_year, total_copies, available_copies, created_at)
	VALUES (?, ?, ?, ?, ?, 0, 0, CURRENT_TIMESTAMP)`
	res, err := s.db.ExecContext(ctx, q, b.TenantID, b.Title, b.Author, b.ISBN, b.PublicationYear)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.BookID = id
	return nil
}

func (s *Store) GetBookByID(ctx context.Context, tenantID string, bookID int64) (*Book, error) {
	const q = `
	SELECT book_id, tenant_id, title, author, isbn, publication_year, total_copies, available_copies, created_at
	FROM books WHERE tenant_id = ? AND book_id = ?`
	var b Book
	err := s.db.QueryRowContext(ctx, q, tenantID, bookID).Scan(
		&b.BookID, &b.TenantID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}
	return &b, nil
}

// UpdateBookPartial applies only the supplied columns.
func (s *Store) UpdateBookPartial(ctx context.Context, tenantID string, bookID int64, sets []string, args []any) error {
	if len(sets) == 0 {
		return nil
	}
	q := fmt.Sprintf(`UPDATE books SET %s WHERE tenant_id = ? AND book_id = ?`, strings.Join(sets, ", "))
	args = append(args, tenantID, bookID)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		// Row may exist with identical values; distinguish via a lookup.
		if _, err := s.GetBookByID(ctx, tenantID, bookID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, tenantID string, bookID int64) error {
	n, err := s.CountCopies(ctx, bookID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict("book still has copies")
	}
	const q = `DELETE FROM books WHERE tenant_id = ? AND book_id = ?`
	res, err := s.db.ExecContext(ctx, q, tenantID, bookID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func (s *Store) ListBooks(ctx context.Context, tenantID string, q BookSearchQuery, p Page) ([]Book, int64, error) {
	var sb strings.Builder
	args := []any{tenantID}

	sb.WriteString(`
	SELECT book_id, tenant_id, title, author, isbn, publication_year, total_copies, available_copies, created_at
	FROM books
	WHERE tenant_id = ?`)

	var cond strings.Builder
	condArgs := []any{}
	if q.Title != nil && *q.Title != "" {
		cond.WriteString(" AND title LIKE ?")
		condArgs = append(condArgs, "%"+*q.Title+"%")
	}
	if q.Author != nil && *q.Author != "" {
		cond.WriteString(" AND author LIKE ?")
		condArgs = append(condArgs, "%"+*q.Author+"%")
	}
	if q.ISBN != nil && *q.ISBN != "" {
		cond.WriteString(" AND isbn = ?")
		condArgs = append(condArgs, *q.ISBN)
	}
	sb.WriteString(cond.String())
	args = append(args, condArgs...)

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY book_id %s", order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.BookID, &b.TenantID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear,
			&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cntQ := `SELECT COUNT(*) FROM books WHERE tenant_id = ?` + cond.String()
	cntArgs := append([]any{tenantID}, condArgs...)
	var total int64
	if err := s.db.QueryRowContext(ctx, cntQ, cntArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) CountCopies(ctx context.Context, bookID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM book_copies WHERE book_id = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecountBook rewrites both cached count columns from a full re-scan of the
// copy rows. Not an increment: a rescan converges even when concurrent copy
// mutations interleave.
func (s *Store) RecountBook(ctx context.Context, bookID int64) error {
	const q = `
	UPDATE books b
	SET b.total_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id),
	    b.available_copies = (SELECT COUNT(*) FROM book_copies c WHERE c.book_id = b.book_id AND c.status = 'available')
	WHERE b.book_id = ?`
	_, err := s.db.ExecContext(ctx, q, bookID)
	return err
}

// ===== copies / accession allocation =====

const (
	allocMaxAttempts = 3
	allocBackoffUnit = 100 * time.Millisecond
)

func (s *Store) maxAccession(ctx context.Context, tenantID string) (string, error) {
	const q = `
	SELECT accession_number FROM book_copies
	WHERE tenant_id = ? AND accession_number LIKE ?
	ORDER BY accession_number DESC LIMIT 1`
	var acc string
	err := s.db.QueryRowContext(ctx, q, tenantID, AccessionPrefix+"%").Scan(&acc)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return acc, nil
}

func (s *Store) insertCopiesBatch(ctx context.Context, copies []BookCopy) error {
	var sb strings.Builder
	sb.WriteString(`
	INSERT INTO book_copies
	(book_id, tenant_id, accession_number, status, purchase_date, price, condition_notes, created_at)
	VALUES `)
	args := make([]any, 0, len(copies)*7)
	for i, c := range copies {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)")
		args = append(args, c.BookID, c.TenantID, c.AccessionNumber, string(c.Status),
			c.PurchaseDate, c.Price, c.ConditionNotes)
	}
	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// ReserveAndInsertCopies is the accession allocator: read the tenant's
// current max, derive the next range, insert the whole batch in one
// statement and let the (tenant_id, accession_number) unique key arbitrate.
// A concurrent allocation that reserved an overlapping range shows up as
// MySQL error 1062; the whole cycle is then retried with linear backoff.
func (s *Store) ReserveAndInsertCopies(ctx context.Context, bookID int64, tenantID string, n int, meta CopyMeta) ([]BookCopy, error) {
	var lastErr error
	for attempt := 1; attempt <= allocMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * allocBackoffUnit):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		maxAcc, err := s.maxAccession(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		first := NextAccession(maxAcc)
		numbers := SynthesizeAccessions(first, n)

		copies := make([]BookCopy, 0, n)
		for _, num := range numbers {
			copies = append(copies, BookCopy{
				BookID:          bookID,
				TenantID:        tenantID,
				AccessionNumber: num,
				Status:          StatusAvailable,
				PurchaseDate:    meta.PurchaseDate,
				Price:           meta.Price,
				ConditionNotes:  meta.ConditionNotes,
			})
		}

		err = s.insertCopiesBatch(ctx, copies)
		if err == nil {
			return s.copiesByAccessionRange(ctx, tenantID, numbers[0], numbers[len(numbers)-1])
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		lastErr = err
	}
	log.Printf("[WARN] accession allocation exhausted after %d attempts: %v", allocMaxAttempts, lastErr)
	return nil, ErrTransient("accession allocation exhausted, retry later")
}

func (s *Store) copiesByAccessionRange(ctx context.Context, tenantID, from, to string) ([]BookCopy, error) {
	const q = `
	SELECT copy_id, book_id, tenant_id, accession_number, status, purchase_date, price, condition_notes, created_at
	FROM book_copies
	WHERE tenant_id = ? AND accession_number BETWEEN ? AND ?
	ORDER BY accession_number ASC`
	rows, err := s.db.QueryContext(ctx, q, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCopies(rows)
}

func (s *Store) GetCopyByID(ctx context.Context, tenantID string, copyID int64) (*BookCopy, error) {
	const q = `
	SELECT copy_id, book_id, tenant_id, accession_number, status, purchase_date, price, condition_notes, created_at
	FROM book_copies WHERE tenant_id = ? AND copy_id = ?`
	var c BookCopy
	err := s.db.QueryRowContext(ctx, q, tenantID, copyID).Scan(
		&c.CopyID, &c.BookID, &c.TenantID, &c.AccessionNumber, &c.Status,
		&c.PurchaseDate, &c.Price, &c.ConditionNotes, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("copy not found")
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCopyPartial(ctx context.Context, tenantID string, copyID int64, sets []string, args []any) error {
	if len(sets) == 0 {
		return nil
	}
	q := fmt.Sprintf(`UPDATE book_copies SET %s WHERE tenant_id = ? AND copy_id = ?`, strings.Join(sets, ", "))
	args = append(args, tenantID, copyID)
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) DeleteCopy(ctx context.Context, tenantID string, copyID int64) error {
	// Guard rides on the status predicate; an issued copy is never deleted.
	const q = `DELETE FROM book_copies WHERE tenant_id = ? AND copy_id = ? AND status <> 'issued'`
	res, err := s.db.ExecContext(ctx, q, tenantID, copyID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		if _, err := s.GetCopyByID(ctx, tenantID, copyID); err != nil {
			return err
		}
		return ErrConflict("copy is currently issued")
	}
	return nil
}

func (s *Store) ListCopiesByBook(ctx context.Context, tenantID string, bookID int64, f CopyFilter, p Page) ([]BookCopy, int64, error) {
	var sb strings.Builder
	args := []any{tenantID, bookID}
	sb.WriteString(`
	SELECT copy_id, book_id, tenant_id, accession_number, status, purchase_date, price, condition_notes, created_at
	FROM book_copies
	WHERE tenant_id = ? AND book_id = ?`)
	if f.Status != nil && *f.Status != "" {
		sb.WriteString(" AND status = ?")
		args = append(args, *f.Status)
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(" ORDER BY accession_number ASC LIMIT ? OFFSET ?")
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := scanCopies(rows)
	if err != nil {
		return nil, 0, err
	}

	cntQ := `SELECT COUNT(*) FROM book_copies WHERE tenant_id = ? AND book_id = ?`
	cntArgs := []any{tenantID, bookID}
	if f.Status != nil && *f.Status != "" {
		cntQ += ` AND status = ?`
		cntArgs = append(cntArgs, *f.Status)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntQ, cntArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanCopies(rows *sql.Rows) ([]BookCopy, error) {
	var out []BookCopy
	for rows.Next() {
		var c BookCopy
		if err := rows.Scan(
			&c.CopyID, &c.BookID, &c.TenantID, &c.AccessionNumber, &c.Status,
			&c.PurchaseDate, &c.Price, &c.ConditionNotes, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
