package model

// Holding is the quantity of one asset currently owned, together with the
// asset master data cached at the time it was last bought or refreshed.
// A holding with zero quantity is never stored.
type Holding struct {
	Asset    Asset   `json:"asset"`
	Quantity float64 `json:"quantity"`
}

// Value returns quantity times the cached reference price.
func (h Holding) Value() float64 {
	return h.Quantity * h.Asset.ReferencePrice
}
