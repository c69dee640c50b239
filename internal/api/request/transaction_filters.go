package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// ParseTransactionFilters extracts and validates ledger query parameters.
// All parameters are optional.
//
// Validation rules:
//   - asset: ticker symbol, upper-cased
//   - from/to: YYYY-MM-DD or RFC3339; a plain "to" date includes that whole day
//   - from must not be after to
func ParseTransactionFilters(assetParam, fromParam, toParam string) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		AssetID: strings.ToUpper(strings.TrimSpace(assetParam)),
	}

	from, to, err := ParseDateRange(fromParam, toParam)
	if err != nil {
		return model.TransactionFilter{}, err
	}
	filter.From, filter.To = from, to
	return filter, nil
}

// ParseDateRange parses optional inclusive from/to bounds. Empty bounds
// stay zero. A plain "to" date includes that whole day.
func ParseDateRange(fromParam, toParam string) (from, to time.Time, err error) {
	if fromParam != "" {
		if from, _, err = parseBound(fromParam); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
		}
	}
	if toParam != "" {
		var dateOnly bool
		if to, dateOnly, err = parseBound(toParam); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from %s is after to %s", fromParam, toParam)
	}
	return from, to, nil
}

func parseBound(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", s)
}
