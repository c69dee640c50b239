// Package analytics contains the pure portfolio calculators: target
// allocation from priorities, sector diversification, rebalancing deltas and
// return volatility.
//
// The calculators deliberately differ in how they treat empty input:
// Allocate fails, Diversify returns an empty mapping, and Rebalance ignores
// assets that appear only in the current allocation. Each policy has its own
// test so that changing one is a conscious decision.
package analytics
