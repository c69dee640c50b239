package validation

import (
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
)

// ValidateTradeRequest validates a buy or sell request.
//
// Required fields:
//   - symbol: well-formed ticker
//   - quantity: must be positive
//
// Optional fields (validated if provided):
//   - price: must not be negative
//   - timestamp: YYYY-MM-DD or RFC3339
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateTradeRequest(req request.TradeRequest) error {
	errors := make(map[string]string)

	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if !(req.Quantity > 0) || !finite(req.Quantity) {
		errors["quantity"] = "quantity must be positive"
	}

	if req.Price != nil && (*req.Price < 0 || !finite(*req.Price)) {
		errors["price"] = "price must not be negative"
	}

	if req.Timestamp != "" {
		if _, err := ParseTime(req.Timestamp); err != nil {
			errors["timestamp"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
