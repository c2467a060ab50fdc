package catalog

import "time"

type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

type BookResponse struct {
	BookID          int64     `json:"book_id"`
	TenantID        string    `json:"tenant_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateCopiesRequest struct {
	Count int `json:"count" binding:"required"`
	// "2006-01-02"
	PurchaseDate   *string  `json:"purchase_date,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	ConditionNotes *string  `json:"condition_notes,omitempty"`
}

type UpdateCopyRequest struct {
	Status         *string  `json:"status,omitempty"`
	PurchaseDate   *string  `json:"purchase_date,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	ConditionNotes *string  `json:"condition_notes,omitempty"`
}

type CopyResponse struct {
	CopyID          int64      `json:"copy_id"`
	BookID          int64      `json:"book_id"`
	TenantID        string     `json:"tenant_id"`
	AccessionNumber string     `json:"accession_number"`
	Status          string     `json:"status"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	ConditionNotes  *string    `json:"condition_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type BookListResponse struct {
	Items []BookResponse `json:"items"`
	Meta  ListMeta       `json:"meta"`
}

type CopyListResponse struct {
	Items []CopyResponse `json:"items"`
	Meta  ListMeta       `json:"meta"`
}

func buildBookResponse(b *Book) BookResponse {
	resp := BookResponse{
		BookID:          b.BookID,
		TenantID:        b.TenantID,
		Title:           b.Title,
		Author:          b.Author,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
	}
	if b.ISBN.Valid {
		val := b.ISBN.String
		resp.ISBN = &val
	}
	if b.PublicationYear.Valid {
		val := int(b.PublicationYear.Int64)
		resp.PublicationYear = &val
	}
	return resp
}

func buildCopyResponse(c *BookCopy) CopyResponse {
	resp := CopyResponse{
		CopyID:          c.CopyID,
		BookID:          c.BookID,
		TenantID:        c.TenantID,
		AccessionNumber: c.AccessionNumber,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
	}
	if c.PurchaseDate.Valid {
		val := c.PurchaseDate.Time
		resp.PurchaseDate = &val
	}
	if c.Price.Valid {
		val := c.Price.Float64
		resp.Price = &val
	}
	if c.ConditionNotes.Valid {
		val := c.ConditionNotes.String
		resp.ConditionNotes = &val
	}
	return resp
}
