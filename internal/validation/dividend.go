package validation

import (
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
)

// ValidateCreditDividend validates a dividend credit request.
//
// Required fields:
//   - symbol: well-formed ticker
//   - cashAmount: must be positive
func ValidateCreditDividend(req request.CreditDividendRequest) error {
	errors := make(map[string]string)

	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if !(req.CashAmount > 0) || !finite(req.CashAmount) {
		errors["cashAmount"] = "cashAmount must be positive"
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
