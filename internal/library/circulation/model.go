package circulation

import (
	"database/sql"
	"time"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanLost     LoanStatus = "lost"
)

// Loan is one row of the loans table. fine_amount holds the overdue (or
// lost-replacement) charge; collected_amount holds the condition/damage
// charge taken at the desk on return. The two are independent.
type Loan struct {
	LoanID          int64
	LoanULID        string
	CopyID          int64
	BorrowerID      string
	TenantID        string
	IssueDate       time.Time
	DueDate         time.Time
	ReturnDate      sql.NullTime
	Status          LoanStatus
	FineAmount      float64
	CollectedAmount float64
	Notes           sql.NullString
}

type LoanFilter struct {
	BorrowerID  *string
	Status      *string
	OverdueOnly bool
	From        *time.Time
	To          *time.Time
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
