package fines

import (
	"database/sql"
	"time"
)

// Fine is a standalone unpaid-charge row. Only overdue fines and lost-book
// charges become rows here; condition charges live on the loan alone
// because they are settled at the desk when the copy comes back.
type Fine struct {
	FineID     int64
	FineULID   string
	LoanID     int64
	BorrowerID string
	TenantID   string
	Amount     float64
	Paid       bool
	PaidAt     sql.NullTime
	Reason     string
	CreatedAt  time.Time
}

type FineFilter struct {
	BorrowerID *string
	UnpaidOnly bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
