package request

// AllocationRequest maps asset IDs to non-negative priority scores.
type AllocationRequest struct {
	Priorities map[string]float64 `json:"priorities"`
}

// DiversificationRequest maps asset IDs to their sector.
type DiversificationRequest struct {
	Sectors map[string]string `json:"sectors"`
}

// RebalanceRequest compares a target allocation with a current one. When
// Current is omitted the portfolio's live allocation is used.
type RebalanceRequest struct {
	Current map[string]float64 `json:"current,omitempty"`
	Target  map[string]float64 `json:"target"`
}
