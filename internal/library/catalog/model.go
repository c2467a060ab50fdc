package catalog

import (
	"database/sql"
	"time"
)

// Copy status values. Issued/returned transitions go through circulation;
// catalog only ever sets available/maintenance/damaged directly.
type CopyStatus string

const (
	StatusAvailable   CopyStatus = "available"
	StatusIssued      CopyStatus = "issued"
	StatusLost        CopyStatus = "lost"
	StatusMaintenance CopyStatus = "maintenance"
	StatusDamaged     CopyStatus = "damaged"
)

func ValidCopyStatus(s string) bool {
	switch CopyStatus(s) {
	case StatusAvailable, StatusIssued, StatusLost, StatusMaintenance, StatusDamaged:
		return true
	}
	return false
}

// Book is one row of the books table. The two count columns are caches,
// recomputed by full re-scan after every copy mutation.
type Book struct {
	BookID          int64
	TenantID        string
	Title           string
	Author          string
	ISBN            sql.NullString
	PublicationYear sql.NullInt64
	TotalCopies     int
	AvailableCopies int
	CreatedAt       time.Time
}

// BookCopy is one physical instance of a Book.
type BookCopy struct {
	CopyID          int64
	BookID          int64
	TenantID        string
	AccessionNumber string
	Status          CopyStatus
	PurchaseDate    sql.NullTime
	Price           sql.NullFloat64
	ConditionNotes  sql.NullString
	CreatedAt       time.Time
}

// CopyMeta carries the shared attributes of a copy batch.
type CopyMeta struct {
	PurchaseDate   sql.NullTime
	Price          sql.NullFloat64
	ConditionNotes sql.NullString
}

type BookSearchQuery struct {
	Title  *string
	Author *string
	ISBN   *string
}

type CopyFilter struct {
	Status *string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
