// Package dividend holds the FIFO queue of dividend cash credits waiting to be
// reinvested into the asset that paid them.
package dividend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// Store persists pending dividends so a restart does not lose credits.
type Store interface {
	InsertPendingDividend(ctx context.Context, d model.PendingDividend) error
	// RequeuePendingDividend stores d ahead of every other pending dividend.
	RequeuePendingDividend(ctx context.Context, d model.PendingDividend) error
	DeletePendingDividend(ctx context.Context, id string) error
	LoadPendingDividends(ctx context.Context) ([]model.PendingDividend, error)
}

// Reinvestor is the slice of the portfolio a drain needs.
type Reinvestor interface {
	Holding(assetID string) (model.Holding, bool)
	CurrentPrice(ctx context.Context, assetID string) (float64, error)
	AddHolding(ctx context.Context, asset model.Asset, quantity, price float64, at time.Time) (model.Holding, error)
}

// Queue is a FIFO of pending dividends. Entries are consumed exactly once, in
// arrival order.
type Queue struct {
	mu      sync.Mutex
	drainMu sync.Mutex
	pending []model.PendingDividend
	store   Store
	log     zerolog.Logger
	now     func() time.Time
}

// NewQueue creates an empty queue. store may be nil for an in-memory queue.
func NewQueue(store Store, log zerolog.Logger) *Queue {
	return &Queue{
		store: store,
		log:   log.With().Str("component", "dividend_queue").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Restore replaces the in-memory queue with the persisted pending dividends.
func (q *Queue) Restore(ctx context.Context) error {
	if q.store == nil {
		return nil
	}
	pending, err := q.store.LoadPendingDividends(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending dividends: %w", err)
	}

	q.mu.Lock()
	q.pending = pending
	q.mu.Unlock()
	return nil
}

// Credit appends a dividend of cash for assetID to the tail of the queue.
func (q *Queue) Credit(ctx context.Context, assetID string, cash float64, at time.Time) (model.PendingDividend, error) {
	if assetID == "" {
		return model.PendingDividend{}, apperrors.ErrEmptyID
	}
	if !(cash > 0) {
		return model.PendingDividend{}, fmt.Errorf("%w: cash amount %v", apperrors.ErrInvalidQuantity, cash)
	}
	if at.IsZero() {
		at = q.now()
	}

	d := model.PendingDividend{
		ID:         uuid.New().String(),
		AssetID:    assetID,
		CashAmount: cash,
		CreditedAt: at,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.store != nil {
		if err := q.store.InsertPendingDividend(ctx, d); err != nil {
			return model.PendingDividend{}, err
		}
	}
	q.pending = append(q.pending, d)

	q.log.Debug().Str("asset", assetID).Float64("cash", cash).Msg("Dividend credited")
	return d, nil
}

// Pending returns a copy of the queued dividends in arrival order.
func (q *Queue) Pending() []model.PendingDividend {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.PendingDividend, len(q.pending))
	copy(out, q.pending)
	return out
}

// Len returns the number of queued dividends.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) head() (model.PendingDividend, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return model.PendingDividend{}, false
	}
	return q.pending[0], true
}

// claim takes d off the head of the queue. The store delete runs first, so a
// failed delete leaves the dividend queued in both places.
func (q *Queue) claim(ctx context.Context, d model.PendingDividend) error {
	if q.store != nil {
		if err := q.store.DeletePendingDividend(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete pending dividend %s: %w", d.ID, err)
		}
	}

	// Restore may have replaced the queue while the drain was working on it.
	q.mu.Lock()
	if len(q.pending) > 0 && q.pending[0].ID == d.ID {
		q.pending = q.pending[1:]
	}
	q.mu.Unlock()
	return nil
}

// requeue puts a claimed dividend back at the head after its purchase failed.
func (q *Queue) requeue(ctx context.Context, d model.PendingDividend) error {
	if q.store != nil {
		if err := q.store.RequeuePendingDividend(ctx, d); err != nil {
			q.log.Error().Err(err).Str("dividend", d.ID).Msg("Failed to requeue dividend, it is lost")
			return fmt.Errorf("failed to requeue pending dividend %s: %w", d.ID, err)
		}
	}

	q.mu.Lock()
	q.pending = append([]model.PendingDividend{d}, q.pending...)
	q.mu.Unlock()
	return nil
}

// Cancel removes a queued dividend that has not been drained yet, in the store
// and in memory. Cancelling an unknown ID is a no-op.
func (q *Queue) Cancel(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.store != nil {
		if err := q.store.DeletePendingDividend(ctx, id); err != nil {
			return fmt.Errorf("failed to delete pending dividend %s: %w", id, err)
		}
	}
	for i, d := range q.pending {
		if d.ID == id {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			break
		}
	}
	return nil
}

// DrainAndReinvest consumes the queue head to tail. A dividend on an asset
// that is held buys cash/currentPrice more units of it; a dividend on an
// asset that is not held is dropped without touching holdings.
//
// When a price lookup or the purchase fails, the failing entry and every
// entry behind it stay queued and the error is returned together with the
// reinvestments completed so far. An entry leaves the store before its
// purchase is made, so a dividend is never reinvested twice.
func (q *Queue) DrainAndReinvest(ctx context.Context, r Reinvestor) ([]model.Reinvestment, error) {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	results := []model.Reinvestment{}
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		d, ok := q.head()
		if !ok {
			return results, nil
		}

		holding, held := r.Holding(d.AssetID)
		if !held {
			q.log.Warn().
				Str("asset", d.AssetID).
				Float64("cash", d.CashAmount).
				Msg("Dropping dividend for asset not held")
			if err := q.claim(ctx, d); err != nil {
				return results, err
			}
			results = append(results, model.Reinvestment{Dividend: d, Status: model.ReinvestmentStatusDropped})
			continue
		}

		price, err := r.CurrentPrice(ctx, d.AssetID)
		if err != nil {
			return results, fmt.Errorf("reinvesting dividend %s: %w", d.ID, err)
		}
		if !(price > 0) {
			return results, fmt.Errorf("reinvesting dividend %s: %w: price %v", d.ID, apperrors.ErrPriceUnavailable, price)
		}

		if err := q.claim(ctx, d); err != nil {
			return results, err
		}
		quantity := d.CashAmount / price
		if _, err := r.AddHolding(ctx, holding.Asset, quantity, price, q.now()); err != nil {
			err = fmt.Errorf("reinvesting dividend %s: %w", d.ID, err)
			if rqErr := q.requeue(ctx, d); rqErr != nil {
				return results, errors.Join(err, rqErr)
			}
			return results, err
		}

		q.log.Info().
			Str("asset", d.AssetID).
			Float64("quantity", quantity).
			Float64("price", price).
			Msg("Dividend reinvested")
		results = append(results, model.Reinvestment{
			Dividend: d,
			Status:   model.ReinvestmentStatusReinvested,
			Quantity: quantity,
			Price:    price,
		})
	}
}
