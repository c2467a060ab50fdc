package circulation

import "time"

type IssueRequest struct {
	CopyID     int64  `json:"copy_id" binding:"required"`
	BorrowerID string `json:"borrower_id" binding:"required"`
	// "2006-01-02"; overrides the policy loan duration when given
	DueDate *string `json:"due_date,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	// Condition/damage charge collected at the desk; independent of the
	// overdue fine and never mirrored into a fine row.
	CollectedAmount *float64 `json:"collected_amount,omitempty"`
}

type LostRequest struct {
	ProcessingFee *float64 `json:"processing_fee,omitempty"` // defaults to 5
}

type LoanResponse struct {
	LoanID          int64      `json:"loan_id"`
	LoanULID        string     `json:"loan_ulid"`
	CopyID          int64      `json:"copy_id"`
	BorrowerID      string     `json:"borrower_id"`
	TenantID        string     `json:"tenant_id"`
	IssueDate       time.Time  `json:"issue_date"`
	DueDate         time.Time  `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	Status          string     `json:"status"`
	FineAmount      float64    `json:"fine_amount"`
	CollectedAmount float64    `json:"collected_amount"`
	Notes           *string    `json:"notes,omitempty"`
}

type IssueResponse struct {
	Loan LoanResponse `json:"loan"`
	// Non-fatal advisory, set when the borrower has unpaid fines.
	Warning *string `json:"warning,omitempty"`
}

type ReturnResponse struct {
	Loan      LoanResponse `json:"loan"`
	Fine      float64      `json:"fine"`
	DaysLate  int          `json:"days_late"`
	Collected bool         `json:"collected"`
}

type LostResponse struct {
	Loan      LoanResponse `json:"loan"`
	TotalCost float64      `json:"total_cost"`
}

type LoanListResponse struct {
	Items []LoanResponse `json:"items"`
	Total int64          `json:"total"`
}

func buildLoanResponse(l *Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:          l.LoanID,
		LoanULID:        l.LoanULID,
		CopyID:          l.CopyID,
		BorrowerID:      l.BorrowerID,
		TenantID:        l.TenantID,
		IssueDate:       l.IssueDate,
		DueDate:         l.DueDate,
		Status:          string(l.Status),
		FineAmount:      l.FineAmount,
		CollectedAmount: l.CollectedAmount,
	}
	if l.ReturnDate.Valid {
		val := l.ReturnDate.Time
		resp.ReturnDate = &val
	}
	if l.Notes.Valid {
		val := l.Notes.String
		resp.Notes = &val
	}
	return resp
}
