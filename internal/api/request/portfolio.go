package request

// TradeRequest buys or sells a quantity of an asset. Price is optional; when
// omitted the current market price is used.
type TradeRequest struct {
	Symbol    string   `json:"symbol"`
	Quantity  float64  `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}
