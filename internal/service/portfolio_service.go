package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/analytics"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/symbols"
)

// minOrderQuantity drops rebalance orders too small to matter.
const minOrderQuantity = 1e-9

// PortfolioService handles trading and valuation of the portfolio.
// It resolves symbols through the directory and delegates state changes to
// the portfolio, which owns holdings and ledger.
type PortfolioService struct {
	portfolio *portfolio.Portfolio
	directory *symbols.Directory
	log       zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(p *portfolio.Portfolio, directory *symbols.Directory, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		portfolio: p,
		directory: directory,
		log:       log.With().Str("component", "portfolio_service").Logger(),
	}
}

// tradePrice returns the requested price or, when absent, a fresh market price.
func (s *PortfolioService) tradePrice(ctx context.Context, symbol string, requested *float64) (float64, error) {
	if requested != nil {
		return *requested, nil
	}
	return s.portfolio.CurrentPrice(ctx, symbol)
}

// Buy adds quantity units of the requested symbol to the portfolio.
func (s *PortfolioService) Buy(ctx context.Context, req request.TradeRequest) (model.Holding, error) {
	symbol := symbols.Normalize(req.Symbol)
	at, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return model.Holding{}, err
	}
	price, err := s.tradePrice(ctx, symbol, req.Price)
	if err != nil {
		return model.Holding{}, err
	}

	asset := s.directory.Resolve(ctx, symbol)
	return s.portfolio.AddHolding(ctx, asset, req.Quantity, price, at)
}

// Sell removes quantity units of the requested symbol from the portfolio.
// Selling more than is held fails with apperrors.ErrInsufficientQuantity.
func (s *PortfolioService) Sell(ctx context.Context, req request.TradeRequest) (model.Holding, error) {
	symbol := symbols.Normalize(req.Symbol)
	at, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return model.Holding{}, err
	}

	h, held := s.portfolio.Holding(symbol)
	if !held || h.Quantity < req.Quantity {
		return model.Holding{}, fmt.Errorf("%w: %s", apperrors.ErrInsufficientQuantity, symbol)
	}

	price, err := s.tradePrice(ctx, symbol, req.Price)
	if err != nil {
		return model.Holding{}, err
	}
	return s.portfolio.RemoveHolding(ctx, symbol, req.Quantity, price, at)
}

// GetHoldings returns the current holdings sorted by asset ID.
func (s *PortfolioService) GetHoldings() []model.Holding {
	return s.portfolio.Holdings()
}

// GetAllocations returns each holding's share of total value.
func (s *PortfolioService) GetAllocations(ctx context.Context) map[string]float64 {
	return s.portfolio.Allocations(ctx)
}

// GetSummary values every holding once and derives total, weights and sector
// concentration from that single valuation. Monetary values are rounded to
// two decimals; weights are not.
func (s *PortfolioService) GetSummary(ctx context.Context) model.PortfolioSummary {
	v := s.portfolio.Valuation(ctx)
	allocations := v.Allocations()

	sectors := make(map[string]string, len(v.Holdings))
	holdings := make([]model.HoldingSummary, 0, len(v.Holdings))
	for id, h := range v.Holdings {
		sectors[id] = h.Asset.Sector
		price := v.Prices[id]
		holdings = append(holdings, model.HoldingSummary{
			AssetID:  id,
			Name:     h.Asset.Name,
			Sector:   h.Asset.Sector,
			Quantity: h.Quantity,
			Price:    round(price),
			Value:    round(h.Quantity * price),
			Weight:   allocations[id],
		})
	}
	slices.SortFunc(holdings, func(a, b model.HoldingSummary) int {
		return cmp.Compare(a.AssetID, b.AssetID)
	})

	return model.PortfolioSummary{
		TotalValue:      round(v.Total()),
		Holdings:        holdings,
		Allocations:     allocations,
		Diversification: analytics.Diversify(sectors),
		StalePrices:     v.Stale,
		CalculatedAt:    time.Now().UTC(),
	}
}

// GetTransactions queries the ledger by asset and inclusive date range.
func (s *PortfolioService) GetTransactions(filter model.TransactionFilter) ([]model.Transaction, error) {
	return s.portfolio.Transactions(filter)
}

// GetPrice returns the current price of symbol with its display name. Held
// assets fall back to their cached reference price when the market is
// unavailable; other symbols fail with apperrors.ErrPriceUnavailable.
func (s *PortfolioService) GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	symbol = symbols.Normalize(symbol)
	price, stale, err := s.portfolio.PriceOrCached(ctx, symbol)
	if err != nil {
		return model.PriceQuote{}, err
	}
	return model.PriceQuote{
		AssetID: symbol,
		Name:    s.directory.NameOf(ctx, symbol),
		Price:   price,
		Stale:   stale,
	}, nil
}

// RefreshPrices updates the cached reference price of every holding.
func (s *PortfolioService) RefreshPrices(ctx context.Context) (model.PriceRefreshResult, error) {
	return s.portfolio.RefreshPrices(ctx)
}

// PlanRebalance turns the weight deltas between the live allocation and
// target into quantity orders at fresh market prices, without executing them.
//
// Every price must be fresh: a single unavailable price fails the plan with
// apperrors.ErrPriceUnavailable. A portfolio with zero total value yields no
// orders. Sells are capped at the held quantity and ordered before buys.
func (s *PortfolioService) PlanRebalance(ctx context.Context, target map[string]float64) ([]model.RebalanceOrder, error) {
	holdings := make(map[string]model.Holding)
	for _, h := range s.portfolio.Holdings() {
		holdings[h.Asset.ID] = h
	}

	ids := make([]string, 0, len(holdings)+len(target))
	for id := range holdings {
		ids = append(ids, id)
	}
	for id := range target {
		if _, held := holdings[id]; !held {
			ids = append(ids, id)
		}
	}

	prices, err := s.portfolio.FreshPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	v := model.Valuation{Holdings: holdings, Prices: prices}
	total := v.Total()
	orders := []model.RebalanceOrder{}
	if total <= 0 {
		return orders, nil
	}

	for id, delta := range analytics.Rebalance(v.Allocations(), target) {
		price := prices[id]
		quantity := math.Abs(delta) * total / price
		kind := model.KindBuy
		if delta < 0 {
			kind = model.KindSell
			quantity = min(quantity, holdings[id].Quantity)
		}
		if quantity < minOrderQuantity {
			continue
		}
		orders = append(orders, model.RebalanceOrder{
			AssetID:     id,
			Kind:        kind,
			WeightDelta: delta,
			Quantity:    quantity,
			Price:       price,
		})
	}

	slices.SortFunc(orders, func(a, b model.RebalanceOrder) int {
		if a.Kind != b.Kind {
			if a.Kind == model.KindSell {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.AssetID, b.AssetID)
	})
	return orders, nil
}

// ExecuteRebalance plans a rebalance and applies the orders through the
// portfolio. Orders already applied when a later one fails stay applied and
// are returned together with the error.
func (s *PortfolioService) ExecuteRebalance(ctx context.Context, target map[string]float64) ([]model.RebalanceOrder, error) {
	orders, err := s.PlanRebalance(ctx, target)
	if err != nil {
		return nil, err
	}

	executed := make([]model.RebalanceOrder, 0, len(orders))
	for _, o := range orders {
		switch o.Kind {
		case model.KindSell:
			_, err = s.portfolio.RemoveHolding(ctx, o.AssetID, o.Quantity, o.Price, time.Time{})
		default:
			_, err = s.portfolio.AddHolding(ctx, s.directory.Resolve(ctx, o.AssetID), o.Quantity, o.Price, time.Time{})
		}
		if err != nil {
			return executed, fmt.Errorf("%w: %s %s: %w", apperrors.ErrFailedToExecuteTrade, o.Kind, o.AssetID, err)
		}
		executed = append(executed, o)
	}

	s.log.Info().Int("orders", len(executed)).Msg("Rebalance executed")
	return executed, nil
}
