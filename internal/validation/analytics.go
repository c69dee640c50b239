package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
)

// ValidateAllocationRequest checks symbols and that priorities are finite.
// Empty, negative and all-zero priorities are left to the allocation engine,
// which reports them with dedicated errors.
func ValidateAllocationRequest(req request.AllocationRequest) error {
	errors := make(map[string]string)

	for id, p := range req.Priorities {
		if err := ValidateSymbol(id); err != nil {
			errors[id] = err.Error()
		} else if !finite(p) {
			errors[id] = "priority must be a finite number"
		}
	}
	checkDuplicates("", req.Priorities, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateDiversificationRequest checks symbols and that every sector is named.
func ValidateDiversificationRequest(req request.DiversificationRequest) error {
	errors := make(map[string]string)

	for id, sector := range req.Sectors {
		if err := ValidateSymbol(id); err != nil {
			errors[id] = err.Error()
		} else if strings.TrimSpace(sector) == "" {
			errors[id] = "sector is required"
		}
	}
	checkDuplicates("", req.Sectors, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateRebalanceRequest checks symbols and weights of both allocations.
// Weights need not sum to one.
func ValidateRebalanceRequest(req request.RebalanceRequest) error {
	errors := make(map[string]string)

	check := func(prefix string, weights map[string]float64) {
		for id, w := range weights {
			key := fmt.Sprintf("%s.%s", prefix, id)
			if err := ValidateSymbol(id); err != nil {
				errors[key] = err.Error()
			} else if !finite(w) || w < 0 {
				errors[key] = "weight must be a non-negative number"
			}
		}
		checkDuplicates(prefix, weights, errors)
	}
	check("current", req.Current)
	check("target", req.Target)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// checkDuplicates flags keys that name the same symbol once case and
// surrounding space are ignored, such as "aapl" and "AAPL".
func checkDuplicates[V any](prefix string, m map[string]V, errors map[string]string) {
	seen := make(map[string]string, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		norm := strings.ToUpper(strings.TrimSpace(id))
		first, dup := seen[norm]
		if !dup {
			seen[norm] = id
			continue
		}
		key := id
		if prefix != "" {
			key = fmt.Sprintf("%s.%s", prefix, id)
		}
		errors[key] = fmt.Sprintf("duplicates symbol %q", first)
	}
}
