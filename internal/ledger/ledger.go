// Package ledger records buy, sell and dividend events in an append-only log.
package ledger

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// Ledger is an append-only sequence of transactions with an index by asset.
// Entries keep insertion order and are never mutated. Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries []model.Transaction
	byAsset map[string][]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{byAsset: make(map[string][]int)}
}

// Validate checks the invariants every ledger entry must satisfy.
func Validate(tx model.Transaction) error {
	if tx.AssetID == "" {
		return apperrors.ErrEmptyID
	}
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionKind, tx.Kind)
	}
	if !(tx.Amount > 0) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidQuantity, tx.Amount)
	}
	if tx.Price < 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidPrice, tx.Price)
	}
	return nil
}

// Append adds a transaction to the end of the ledger.
func (l *Ledger) Append(tx model.Transaction) error {
	if err := Validate(tx); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byAsset[tx.AssetID] = append(l.byAsset[tx.AssetID], len(l.entries))
	l.entries = append(l.entries, tx)
	return nil
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// All returns every transaction in insertion order.
func (l *Ledger) All() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// ForAsset returns the transactions of one asset in insertion order.
func (l *Ledger) ForAsset(assetID string) []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byAsset[assetID]
	out := make([]model.Transaction, len(idx))
	for i, n := range idx {
		out[i] = l.entries[n]
	}
	return out
}

// Query returns the transactions matching the filter in insertion order.
// From and To are inclusive; a zero bound is open.
func (l *Ledger) Query(filter model.TransactionFilter) ([]model.Transaction, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, apperrors.ErrInvalidDateRange
	}

	var candidates []model.Transaction
	if filter.AssetID != "" {
		candidates = l.ForAsset(filter.AssetID)
	} else {
		candidates = l.All()
	}

	out := make([]model.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if inRange(tx.Timestamp, filter.From, filter.To) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
