package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/analytics"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/pricehistory"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/symbols"
)

// openEnd stands in for an unbounded upper time limit.
var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// PriceHistoryRepository persists price observations.
type PriceHistoryRepository interface {
	UpsertPrices(ctx context.Context, assetID string, points []model.PricePoint) error
	LoadPriceHistory(ctx context.Context) (map[string][]model.PricePoint, error)
}

// HistoryProvider fetches historical closes from the market.
type HistoryProvider interface {
	HistoricalPrices(ctx context.Context, assetID string) ([]model.PricePoint, error)
}

// AnalyticsOptions configures the AnalyticsService.
type AnalyticsOptions struct {
	// DefaultThreshold is used for risk alerts when the caller gives none.
	DefaultThreshold float64
	// Concurrency limits parallel history downloads.
	Concurrency int
}

// AnalyticsService exposes allocation, diversification, rebalancing and
// risk calculations, and keeps the price history store filled.
type AnalyticsService struct {
	portfolio *portfolio.Portfolio
	history   *pricehistory.Store
	risk      *analytics.RiskEngine
	repo      PriceHistoryRepository
	market    HistoryProvider
	opts      AnalyticsOptions
	log       zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService. repo and market may be nil.
func NewAnalyticsService(
	p *portfolio.Portfolio,
	history *pricehistory.Store,
	repo PriceHistoryRepository,
	market HistoryProvider,
	opts AnalyticsOptions,
	log zerolog.Logger,
) *AnalyticsService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &AnalyticsService{
		portfolio: p,
		history:   history,
		risk:      analytics.NewRiskEngine(history),
		repo:      repo,
		market:    market,
		opts:      opts,
		log:       log.With().Str("component", "analytics_service").Logger(),
	}
}

// Allocation converts priorities into target weights.
func (s *AnalyticsService) Allocation(req request.AllocationRequest) (map[string]float64, error) {
	return analytics.Allocate(normalizeKeys(req.Priorities))
}

// Diversification returns sector concentration for the given classification.
func (s *AnalyticsService) Diversification(req request.DiversificationRequest) map[string]float64 {
	sectors := make(map[string]string, len(req.Sectors))
	for id, sector := range req.Sectors {
		sectors[symbols.Normalize(id)] = sector
	}
	return analytics.Diversify(sectors)
}

// PortfolioDiversification returns sector concentration of the current holdings.
func (s *AnalyticsService) PortfolioDiversification() map[string]float64 {
	sectors := make(map[string]string)
	for _, h := range s.portfolio.Holdings() {
		sectors[h.Asset.ID] = h.Asset.Sector
	}
	return analytics.Diversify(sectors)
}

// Rebalance returns target minus current weight for every target asset.
// Without a current allocation in the request the live allocation is used.
func (s *AnalyticsService) Rebalance(ctx context.Context, req request.RebalanceRequest) map[string]float64 {
	current := normalizeKeys(req.Current)
	if req.Current == nil {
		current = s.portfolio.Allocations(ctx)
	}
	return analytics.Rebalance(current, normalizeKeys(req.Target))
}

// Volatility reports the volatility of one asset's stored series.
func (s *AnalyticsService) Volatility(symbol string) model.VolatilityReport {
	symbol = symbols.Normalize(symbol)
	report := model.VolatilityReport{
		AssetID:      symbol,
		Volatility:   s.risk.Volatility(symbol),
		Observations: s.history.Len(symbol),
	}
	if latest, ok := s.history.Latest(symbol); ok {
		report.LastClose = latest.Close
		report.LastObserved = &latest.Timestamp
	}
	return report
}

// Alerts lists assets whose volatility exceeds threshold, or the configured
// default when threshold is nil.
func (s *AnalyticsService) Alerts(threshold *float64) []model.RiskAlert {
	t := s.opts.DefaultThreshold
	if threshold != nil {
		t = *threshold
	}
	return s.risk.GenerateAlerts(t)
}

// PriceHistory returns the stored series of symbol in ascending time order,
// limited to the inclusive range [from, to]. Zero bounds are open.
func (s *AnalyticsService) PriceHistory(symbol string, from, to time.Time) []model.PricePoint {
	symbol = symbols.Normalize(symbol)
	if from.IsZero() && to.IsZero() {
		return s.history.Series(symbol)
	}
	if to.IsZero() {
		to = openEnd
	}
	return s.history.Between(symbol, from, to)
}

// LoadHistory fills the store from the repository.
func (s *AnalyticsService) LoadHistory(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	series, err := s.repo.LoadPriceHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load price history: %w", err)
	}
	for id, points := range series {
		s.history.AddSeries(id, points)
	}
	s.log.Info().Int("assets", len(series)).Msg("Price history loaded")
	return nil
}

// SyncPriceHistory downloads the history of one symbol, stores it and
// persists it. PricesAdded counts observations the store did not have yet.
func (s *AnalyticsService) SyncPriceHistory(ctx context.Context, symbol string) (model.PriceSyncResponse, error) {
	symbol = symbols.Normalize(symbol)
	if s.market == nil {
		return model.PriceSyncResponse{}, fmt.Errorf("%w: no market data provider", apperrors.ErrPriceUnavailable)
	}

	points, err := s.market.HistoricalPrices(ctx, symbol)
	if err != nil {
		return model.PriceSyncResponse{}, fmt.Errorf("%w: %s: %w", apperrors.ErrPriceUnavailable, symbol, err)
	}

	if s.repo != nil {
		if err := s.repo.UpsertPrices(ctx, symbol, points); err != nil {
			return model.PriceSyncResponse{}, err
		}
	}
	added := s.history.AddSeries(symbol, points)

	s.log.Debug().Str("asset", symbol).Int("added", added).Msg("Price history synced")
	return model.PriceSyncResponse{AssetID: symbol, PricesAdded: added}, nil
}

// SyncAllPriceHistory syncs every held asset concurrently. Failures do not
// stop the other downloads; they are joined into the returned error.
func (s *AnalyticsService) SyncAllPriceHistory(ctx context.Context) ([]model.PriceSyncResponse, error) {
	holdings := s.portfolio.Holdings()

	var (
		mu      sync.Mutex
		results = make([]model.PriceSyncResponse, 0, len(holdings))
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for _, h := range holdings {
		g.Go(func() error {
			res, err := s.SyncPriceHistory(ctx, h.Asset.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			results = append(results, res)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return results, fmt.Errorf("%w: %w", apperrors.ErrFailedToSyncPriceHistory, errors.Join(errs...))
	}
	return results, nil
}

func normalizeKeys(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for id, v := range in {
		out[symbols.Normalize(id)] = v
	}
	return out
}
