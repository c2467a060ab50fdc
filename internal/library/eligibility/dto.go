package eligibility

type Response struct {
	Eligible     bool     `json:"eligible"`
	Message      string   `json:"message"`
	ActiveLoans  int      `json:"active_loans"`
	MaxBooks     int      `json:"max_books"`
	OverdueLoans int      `json:"overdue_loans"`
	UnpaidFines  float64  `json:"unpaid_fines"`
	Warnings     []string `json:"warnings"`
}
