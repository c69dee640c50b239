package portfolio

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// CurrentPrice asks the market for a fresh price, bounded by the configured
// timeout. Any failure, or a non-positive price, is ErrPriceUnavailable.
func (p *Portfolio) CurrentPrice(ctx context.Context, assetID string) (float64, error) {
	if p.market == nil {
		return 0, fmt.Errorf("%w: no market data provider for %s", apperrors.ErrPriceUnavailable, assetID)
	}

	if p.opts.PriceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PriceTimeout)
		defer cancel()
	}

	price, err := p.market.CurrentPrice(ctx, assetID)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, assetID, err)
	}
	if !(price > 0) {
		return 0, fmt.Errorf("%w: %s: non-positive price %v", apperrors.ErrPriceUnavailable, assetID, price)
	}
	return price, nil
}

// PriceOrCached returns a fresh price, or the cached reference price of a
// held asset when the market cannot answer. stale reports the fallback.
func (p *Portfolio) PriceOrCached(ctx context.Context, assetID string) (price float64, stale bool, err error) {
	price, err = p.CurrentPrice(ctx, assetID)
	if err == nil {
		return price, false, nil
	}
	h, held := p.Holding(assetID)
	if !held {
		return 0, false, err
	}
	p.log.Warn().Err(err).Str("asset", assetID).Msg("Using cached reference price")
	return h.Asset.ReferencePrice, true, nil
}

// Valuation takes a point-in-time copy of holdings and prices every asset.
// Assets the market cannot price in time are valued at their cached reference
// price and listed in Stale.
func (p *Portfolio) Valuation(ctx context.Context) model.Valuation {
	holdings := p.snapshot()
	v := model.Valuation{
		Holdings: holdings,
		Prices:   make(map[string]float64, len(holdings)),
	}
	if len(holdings) == 0 {
		return v
	}

	if p.market == nil {
		for id, h := range holdings {
			v.Prices[id] = h.Asset.ReferencePrice
		}
		return v
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	for id, h := range holdings {
		g.Go(func() error {
			price, err := p.CurrentPrice(ctx, id)
			stale := false
			if err != nil {
				p.log.Warn().Err(err).Str("asset", id).Msg("Price unavailable, using cached reference price")
				price = h.Asset.ReferencePrice
				stale = true
			}

			mu.Lock()
			defer mu.Unlock()
			v.Prices[id] = price
			if stale {
				v.Stale = append(v.Stale, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(v.Stale)
	return v
}

// TotalValue returns the sum of quantity times price over all holdings.
func (p *Portfolio) TotalValue(ctx context.Context) float64 {
	return p.Valuation(ctx).Total()
}

// Allocations returns each holding's fraction of total value, or an empty
// mapping when the total value is zero.
func (p *Portfolio) Allocations(ctx context.Context) map[string]float64 {
	return p.Valuation(ctx).Allocations()
}

// RefreshPrices fetches fresh prices for every held asset and stores them as
// the cached reference prices. Assets that cannot be priced keep their cached
// price and are reported in the result.
//
// A holding's cached price changes only after its asset row is persisted. When
// some rows cannot be written the refresh still covers the others, and the
// result lists what was updated alongside the joined store errors.
func (p *Portfolio) RefreshPrices(ctx context.Context) (model.PriceRefreshResult, error) {
	holdings := p.snapshot()
	result := model.PriceRefreshResult{Updated: []string{}, Errors: map[string]string{}}
	fresh := make(map[string]float64, len(holdings))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	for id := range holdings {
		g.Go(func() error {
			price, err := p.CurrentPrice(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[id] = err.Error()
				return nil
			}
			fresh[id] = price
			return nil
		})
	}
	_ = g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	var storeErrs []error
	for _, id := range slices.Sorted(maps.Keys(fresh)) {
		h, held := p.holdings[id]
		if !held {
			continue
		}
		h.Asset.ReferencePrice = fresh[id]
		if p.store != nil {
			if err := p.store.UpsertAsset(ctx, h.Asset); err != nil {
				result.Errors[id] = err.Error()
				storeErrs = append(storeErrs, fmt.Errorf("%s: %w", id, err))
				continue
			}
		}
		p.holdings[id] = h
		result.Updated = append(result.Updated, id)
	}

	p.log.Info().
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Errors)).
		Msg("Reference prices refreshed")

	if len(storeErrs) > 0 {
		return result, fmt.Errorf("failed to persist reference prices: %w", errors.Join(storeErrs...))
	}
	return result, nil
}

// FreshPrices asks the market for a price for every asset in ids. Unlike
// Valuation there is no fallback: the first failure cancels the remaining
// lookups and is returned as ErrPriceUnavailable.
func (p *Portfolio) FreshPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, id := range ids {
		g.Go(func() error {
			price, err := p.CurrentPrice(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			prices[id] = price
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}
