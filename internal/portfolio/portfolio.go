// Package portfolio owns the current holdings and the transaction ledger of a
// single portfolio. Every quantity change is paired with exactly one ledger
// entry and is applied all-or-nothing.
package portfolio

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// MarketData supplies current and historical prices for an asset.
type MarketData interface {
	CurrentPrice(ctx context.Context, assetID string) (float64, error)
	HistoricalPrices(ctx context.Context, assetID string) ([]model.PricePoint, error)
}

// Persistence stores assets and transactions durably. Errors are returned to
// the caller unchanged; the portfolio never retries a write.
type Persistence interface {
	AppendTransaction(ctx context.Context, tx model.Transaction) error
	UpsertAsset(ctx context.Context, asset model.Asset) error
	LoadHoldings(ctx context.Context) (map[string]model.Holding, error)
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)
}

// Options tunes market lookups.
type Options struct {
	// PriceTimeout bounds each market lookup. Zero means no extra timeout.
	PriceTimeout time.Duration
	// Concurrency limits parallel market lookups. Values below 1 mean 1.
	Concurrency int
}

// Portfolio is the single owner of holdings and ledger for one portfolio.
// Mutations are serialized; read-only analytics work on snapshots.
type Portfolio struct {
	mu       sync.RWMutex
	holdings map[string]model.Holding
	ledger   *ledger.Ledger

	store  Persistence
	market MarketData
	opts   Options
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// New creates an empty portfolio. store and market may be nil, in which case
// nothing is persisted and cached reference prices are always used.
func New(store Persistence, market MarketData, log zerolog.Logger, opts Options) *Portfolio {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Portfolio{
		holdings: make(map[string]model.Holding),
		ledger:   ledger.New(),
		store:    store,
		market:   market,
		opts:     opts,
		log:      log.With().Str("component", "portfolio").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Load creates a portfolio and restores its holdings and ledger from store.
func Load(ctx context.Context, store Persistence, market MarketData, log zerolog.Logger, opts Options) (*Portfolio, error) {
	p := New(store, market, log, opts)

	holdings, err := store.LoadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	for id, h := range holdings {
		if h.Quantity > 0 {
			p.holdings[id] = h
		}
	}

	transactions, err := store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	for _, tx := range transactions {
		if err := p.ledger.Append(tx); err != nil {
			return nil, fmt.Errorf("invalid stored transaction %s: %w", tx.ID, err)
		}
	}

	p.log.Info().
		Int("holdings", len(p.holdings)).
		Int("transactions", p.ledger.Len()).
		Msg("Portfolio loaded")

	return p, nil
}

// AddHolding buys quantity units of asset at price. The holding is created if
// absent, seeding its cached reference price with price; otherwise only the
// quantity grows. A buy transaction is appended to the ledger.
func (p *Portfolio) AddHolding(ctx context.Context, asset model.Asset, quantity, price float64, at time.Time) (model.Holding, error) {
	if asset.ID == "" {
		return model.Holding{}, apperrors.ErrEmptyID
	}
	if !(quantity > 0) {
		return model.Holding{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidQuantity, quantity)
	}
	if price < 0 {
		return model.Holding{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPrice, price)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, held := p.holdings[asset.ID]
	updated := existing
	if held {
		updated.Quantity += quantity
	} else {
		asset.ReferencePrice = price
		updated = model.Holding{Asset: asset, Quantity: quantity}
	}

	tx := p.newTransaction(asset.ID, model.KindBuy, quantity, price, at)

	if p.store != nil {
		if !held {
			if err := p.store.UpsertAsset(ctx, updated.Asset); err != nil {
				return model.Holding{}, err
			}
		}
		if err := p.store.AppendTransaction(ctx, tx); err != nil {
			return model.Holding{}, err
		}
	}

	if err := p.ledger.Append(tx); err != nil {
		return model.Holding{}, err
	}
	p.holdings[asset.ID] = updated

	p.log.Debug().
		Str("asset", asset.ID).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("held", updated.Quantity).
		Msg("Holding added")

	return updated, nil
}

// RemoveHolding sells quantity units of an asset at price. It fails with
// ErrInsufficientQuantity when the asset is not held or the held quantity is
// smaller than requested, leaving state untouched. A holding that reaches
// zero is removed; the returned holding then carries quantity 0.
func (p *Portfolio) RemoveHolding(ctx context.Context, assetID string, quantity, price float64, at time.Time) (model.Holding, error) {
	if assetID == "" {
		return model.Holding{}, apperrors.ErrEmptyID
	}
	if !(quantity > 0) {
		return model.Holding{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidQuantity, quantity)
	}
	if price < 0 {
		return model.Holding{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPrice, price)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h, held := p.holdings[assetID]
	if !held {
		return model.Holding{}, fmt.Errorf("%w: %s is not held", apperrors.ErrInsufficientQuantity, assetID)
	}
	if h.Quantity < quantity {
		return model.Holding{}, fmt.Errorf("%w: %s holds %v, requested %v", apperrors.ErrInsufficientQuantity, assetID, h.Quantity, quantity)
	}

	tx := p.newTransaction(assetID, model.KindSell, quantity, price, at)

	if p.store != nil {
		if err := p.store.AppendTransaction(ctx, tx); err != nil {
			return model.Holding{}, err
		}
	}
	if err := p.ledger.Append(tx); err != nil {
		return model.Holding{}, err
	}

	h.Quantity -= quantity
	if h.Quantity <= 0 {
		h.Quantity = 0
		delete(p.holdings, assetID)
	} else {
		p.holdings[assetID] = h
	}

	p.log.Debug().
		Str("asset", assetID).
		Float64("quantity", quantity).
		Float64("price", price).
		Float64("held", h.Quantity).
		Msg("Holding removed")

	return h, nil
}

// RecordDividend appends a dividend entry for a held asset. The amount is the
// cash received, booked at a unit price of 1. Holdings do not change.
func (p *Portfolio) RecordDividend(ctx context.Context, assetID string, cash float64, at time.Time) (model.Transaction, error) {
	if !(cash > 0) {
		return model.Transaction{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidQuantity, cash)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, held := p.holdings[assetID]; !held {
		return model.Transaction{}, fmt.Errorf("%w: %s", apperrors.ErrHoldingNotFound, assetID)
	}

	tx := p.newTransaction(assetID, model.KindDividend, cash, 1, at)
	if p.store != nil {
		if err := p.store.AppendTransaction(ctx, tx); err != nil {
			return model.Transaction{}, err
		}
	}
	if err := p.ledger.Append(tx); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

func (p *Portfolio) newTransaction(assetID string, kind model.TransactionKind, amount, price float64, at time.Time) model.Transaction {
	if at.IsZero() {
		at = p.now()
	}
	return model.Transaction{
		ID:        p.newID(),
		AssetID:   assetID,
		Kind:      kind,
		Amount:    amount,
		Price:     price,
		Timestamp: at.UTC(),
	}
}

// Holding returns the current holding of an asset.
func (p *Portfolio) Holding(assetID string) (model.Holding, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.holdings[assetID]
	return h, ok
}

// Holdings returns a copy of all holdings sorted by asset ID.
func (p *Portfolio) Holdings() []model.Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.Holding, 0, len(p.holdings))
	for _, h := range p.holdings {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b model.Holding) int {
		return cmp.Compare(a.Asset.ID, b.Asset.ID)
	})
	return out
}

func (p *Portfolio) snapshot() map[string]model.Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]model.Holding, len(p.holdings))
	for id, h := range p.holdings {
		out[id] = h
	}
	return out
}

// Transactions queries the ledger.
func (p *Portfolio) Transactions(filter model.TransactionFilter) ([]model.Transaction, error) {
	return p.ledger.Query(filter)
}

// LedgerLen returns the number of ledger entries.
func (p *Portfolio) LedgerLen() int {
	return p.ledger.Len()
}
