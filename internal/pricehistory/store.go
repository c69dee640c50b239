// Package pricehistory keeps per-asset closing price series ordered by time.
//
// Each series is a slice kept sorted on insert by binary search. Inserting in
// the middle is O(n), which is fine for daily closes; lookups and range
// slicing are O(log n).
package pricehistory

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// Store holds the price series of every tracked asset. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	series map[string][]model.PricePoint
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{series: make(map[string][]model.PricePoint)}
}

// Add inserts a single observation. An observation with the same timestamp as
// an existing one replaces its close price, so a series never holds duplicates.
// Reports whether a new point was added.
func (s *Store) Add(assetID string, point model.PricePoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(assetID, point)
}

// AddSeries inserts many observations and returns how many were new.
func (s *Store) AddSeries(assetID string, points []model.PricePoint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range points {
		if s.insert(assetID, p) {
			added++
		}
	}
	return added
}

func (s *Store) insert(assetID string, point model.PricePoint) bool {
	point.Timestamp = point.Timestamp.UTC()
	series := s.series[assetID]

	i, found := slices.BinarySearchFunc(series, point.Timestamp, func(p model.PricePoint, t time.Time) int {
		return p.Timestamp.Compare(t)
	})
	if found {
		series[i].Close = point.Close
		return false
	}
	s.series[assetID] = slices.Insert(series, i, point)
	return true
}

// Series returns a copy of the full series for an asset, oldest first.
func (s *Store) Series(assetID string) []model.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.series[assetID])
}

// Closes returns the close prices of an asset in time order.
func (s *Store) Closes(assetID string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[assetID]
	closes := make([]float64, len(series))
	for i, p := range series {
		closes[i] = p.Close
	}
	return closes
}

// Between returns observations with from <= timestamp <= to.
func (s *Store) Between(assetID string, from, to time.Time) []model.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[assetID]
	lo := sort.Search(len(series), func(i int) bool { return !series[i].Timestamp.Before(from) })
	hi := sort.Search(len(series), func(i int) bool { return series[i].Timestamp.After(to) })
	if lo >= hi {
		return []model.PricePoint{}
	}
	return slices.Clone(series[lo:hi])
}

// Latest returns the most recent observation for an asset.
func (s *Store) Latest(assetID string) (model.PricePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[assetID]
	if len(series) == 0 {
		return model.PricePoint{}, false
	}
	return series[len(series)-1], true
}

// AssetIDs returns every asset with at least one observation, sorted.
func (s *Store) AssetIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.series))
	for id, series := range s.series {
		if len(series) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of observations held for an asset.
func (s *Store) Len(assetID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[assetID])
}
