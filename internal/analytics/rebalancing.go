package analytics

// Rebalance returns target[a] - current[a] for every asset a in target, with a
// missing current weight read as zero. Assets present only in current are
// left out: no implicit target of zero is assumed. Neither mapping has to sum
// to one. Positive deltas are buy signals, negative deltas sell signals.
func Rebalance(current, target map[string]float64) map[string]float64 {
	deltas := make(map[string]float64, len(target))
	for id, weight := range target {
		deltas[id] = weight - current[id]
	}
	return deltas
}
