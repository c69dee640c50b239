package model

import "time"

// PricePoint represents a historical closing price for an asset.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// PriceQuote is the response for a current price lookup.
// Stale is true when the cached reference price was used because the market
// provider could not answer in time.
type PriceQuote struct {
	AssetID string  `json:"assetId"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stale   bool    `json:"stale"`
}

// PriceSyncResponse reports how many observations a history sync stored.
type PriceSyncResponse struct {
	AssetID     string `json:"assetId"`
	PricesAdded int    `json:"pricesAdded"`
}

// PriceRefreshResult summarizes a bulk reference price refresh. Assets whose
// lookup failed keep their cached price and are listed in Errors.
type PriceRefreshResult struct {
	Updated []string          `json:"updated"`
	Errors  map[string]string `json:"errors"`
}
