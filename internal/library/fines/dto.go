package fines

import "time"

type FineResponse struct {
	FineID     int64      `json:"fine_id"`
	FineULID   string     `json:"fine_ulid"`
	LoanID     int64      `json:"loan_id"`
	BorrowerID string     `json:"borrower_id"`
	TenantID   string     `json:"tenant_id"`
	Amount     float64    `json:"amount"`
	Paid       bool       `json:"paid"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

type FineListResponse struct {
	Items []FineResponse `json:"items"`
	Total int64          `json:"total"`
}

type PayFineResponse struct {
	Fine    FineResponse `json:"fine"`
	Receipt string       `json:"receipt"`
}

type UnpaidTotalResponse struct {
	BorrowerID string  `json:"borrower_id"`
	Total      float64 `json:"total"`
}

func buildFineResponse(f *Fine) FineResponse {
	resp := FineResponse{
		FineID:     f.FineID,
		FineULID:   f.FineULID,
		LoanID:     f.LoanID,
		BorrowerID: f.BorrowerID,
		TenantID:   f.TenantID,
		Amount:     f.Amount,
		Paid:       f.Paid,
		Reason:     f.Reason,
		CreatedAt:  f.CreatedAt,
	}
	if f.PaidAt.Valid {
		val := f.PaidAt.Time
		resp.PaidAt = &val
	}
	return resp
}
