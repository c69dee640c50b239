package model

import "time"

// PortfolioSummary represents the current state of the portfolio.
// Monetary values are rounded to two decimal places.
type PortfolioSummary struct {
	TotalValue      float64            `json:"totalValue"`
	Holdings        []HoldingSummary   `json:"holdings"`
	Allocations     map[string]float64 `json:"allocations"`
	Diversification map[string]float64 `json:"diversification"`
	StalePrices     []string           `json:"stalePrices,omitempty"`
	CalculatedAt    time.Time          `json:"calculatedAt"`
}

// HoldingSummary is a holding valued at the price used for the summary.
type HoldingSummary struct {
	AssetID  string  `json:"assetId"`
	Name     string  `json:"name"`
	Sector   string  `json:"sector"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Weight   float64 `json:"weight"`
}

// Valuation is a point-in-time copy of holdings together with the unit price
// used for each asset. Totals and weights derived from one Valuation are
// always mutually consistent.
type Valuation struct {
	Holdings map[string]Holding
	Prices   map[string]float64
	// Stale lists assets valued at their cached reference price.
	Stale []string
}

// RebalanceOrder is a quantity trade derived from a weight delta.
type RebalanceOrder struct {
	AssetID     string          `json:"assetId"`
	Kind        TransactionKind `json:"kind"`
	WeightDelta float64         `json:"weightDelta"`
	Quantity    float64         `json:"quantity"`
	Price       float64         `json:"price"`
}

// RiskAlert flags an asset whose return volatility exceeds a threshold.
type RiskAlert struct {
	AssetID    string  `json:"assetId"`
	Volatility float64 `json:"volatility"`
}

// Total returns the sum of quantity times price over all holdings.
func (v Valuation) Total() float64 {
	var total float64
	for id, h := range v.Holdings {
		total += h.Quantity * v.Prices[id]
	}
	return total
}

// Allocations returns each holding's share of the total value. The mapping
// is empty when the total is zero.
func (v Valuation) Allocations() map[string]float64 {
	allocations := make(map[string]float64, len(v.Holdings))
	total := v.Total()
	if total <= 0 {
		return allocations
	}
	for id, h := range v.Holdings {
		allocations[id] = h.Quantity * v.Prices[id] / total
	}
	return allocations
}

// VolatilityReport is the volatility of one asset's stored price series
// together with its most recent observation.
type VolatilityReport struct {
	AssetID      string     `json:"assetId"`
	Volatility   float64    `json:"volatility"`
	Observations int        `json:"observations"`
	LastClose    float64    `json:"lastClose,omitempty"`
	LastObserved *time.Time `json:"lastObserved,omitempty"`
}
