package analytics

import (
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
)

// Allocate converts priority scores into fractional target weights,
// weight = priority / sum(priorities). The result depends only on the
// multiset of priorities, never on iteration order.
//
// It fails with ErrEmptyInput for an empty set, ErrNegativePriority for any
// score below zero and ErrDegenerateWeights when every score is zero.
func Allocate(priorities map[string]float64) (map[string]float64, error) {
	if len(priorities) == 0 {
		return nil, apperrors.ErrEmptyInput
	}

	var total float64
	for id, p := range priorities {
		if p < 0 {
			return nil, fmt.Errorf("%w: %s has %v", apperrors.ErrNegativePriority, id, p)
		}
		total += p
	}
	if total == 0 {
		return nil, apperrors.ErrDegenerateWeights
	}

	weights := make(map[string]float64, len(priorities))
	for id, p := range priorities {
		weights[id] = p / total
	}
	return weights, nil
}
