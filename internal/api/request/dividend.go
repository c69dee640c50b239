package request

// CreditDividendRequest queues a dividend cash credit for reinvestment.
type CreditDividendRequest struct {
	Symbol     string  `json:"symbol"`
	CashAmount float64 `json:"cashAmount"`
	Timestamp  string  `json:"timestamp,omitempty"`
}
