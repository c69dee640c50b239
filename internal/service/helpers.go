package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/validation"
)

// RoundingPlaces is the number of decimal places for monetary values in responses.
const RoundingPlaces = 2

// round rounds a monetary value half away from zero to two decimal places.
// decimal avoids binary artefacts such as round(1.005) == 1.00.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(1.005)       // returns 1.01
func round(value float64) float64 {
	return decimal.NewFromFloat(value).Round(RoundingPlaces).InexactFloat64()
}

// parseTimestamp parses an optional request timestamp. Empty means "now",
// which the portfolio fills in.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return validation.ParseTime(s)
}
