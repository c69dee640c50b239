package analytics

// Diversify returns, for each sector, the fraction of assets classified in
// it. Sectors without members never appear and an empty input yields an
// empty mapping.
func Diversify(sectors map[string]string) map[string]float64 {
	concentration := make(map[string]float64)
	if len(sectors) == 0 {
		return concentration
	}

	counts := make(map[string]int)
	for _, sector := range sectors {
		counts[sector]++
	}

	total := float64(len(sectors))
	for sector, n := range counts {
		concentration[sector] = float64(n) / total
	}
	return concentration
}
