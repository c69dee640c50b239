package model

import "time"

// PendingDividend is a cash credit waiting to be reinvested into the paying asset.
// It is consumed exactly once and then discarded.
type PendingDividend struct {
	ID         string    `json:"id"`
	AssetID    string    `json:"assetId"`
	CashAmount float64   `json:"cashAmount"`
	CreditedAt time.Time `json:"creditedAt"`
}

// Reinvestment status values reported by a queue drain.
const (
	ReinvestmentStatusReinvested = "reinvested"
	ReinvestmentStatusDropped    = "dropped"
)

// Reinvestment describes what happened to one pending dividend during a drain.
type Reinvestment struct {
	Dividend PendingDividend `json:"dividend"`
	Status   string          `json:"status"`
	Quantity float64         `json:"quantity,omitempty"`
	Price    float64         `json:"price,omitempty"`
}
