package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// PriceRefresher refreshes cached reference prices for every held asset.
type PriceRefresher interface {
	RefreshPrices(ctx context.Context) (model.PriceRefreshResult, error)
}

// HistorySyncer pulls closing price history for every held asset.
type HistorySyncer interface {
	SyncAllPriceHistory(ctx context.Context) ([]model.PriceSyncResponse, error)
}

// DividendReinvestor drains the pending dividend queue.
type DividendReinvestor interface {
	Reinvest(ctx context.Context) ([]model.Reinvestment, error)
}

// RefreshPricesJob updates reference prices from market data.
type RefreshPricesJob struct {
	refresher PriceRefresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshPricesJob creates a RefreshPricesJob bounded by timeout per run.
func NewRefreshPricesJob(refresher PriceRefresher, timeout time.Duration, log zerolog.Logger) *RefreshPricesJob {
	return &RefreshPricesJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "refresh_prices").Logger(),
	}
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Run refreshes prices. Per-asset lookup failures are logged, not returned.
func (j *RefreshPricesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.refresher.RefreshPrices(ctx)
	if err != nil {
		return err
	}
	for id, msg := range result.Errors {
		j.log.Warn().Str("asset", id).Str("error", msg).Msg("Kept cached price")
	}
	j.log.Info().Int("updated", len(result.Updated)).Msg("Prices refreshed")
	return nil
}

// SyncPriceHistoryJob stores fresh closing prices for the risk engine.
type SyncPriceHistoryJob struct {
	syncer  HistorySyncer
	timeout time.Duration
	log     zerolog.Logger
}

// NewSyncPriceHistoryJob creates a SyncPriceHistoryJob bounded by timeout per run.
func NewSyncPriceHistoryJob(syncer HistorySyncer, timeout time.Duration, log zerolog.Logger) *SyncPriceHistoryJob {
	return &SyncPriceHistoryJob{
		syncer:  syncer,
		timeout: timeout,
		log:     log.With().Str("job", "sync_price_history").Logger(),
	}
}

// Name returns the job name
func (j *SyncPriceHistoryJob) Name() string {
	return "sync_price_history"
}

// Run syncs history for all held assets.
func (j *SyncPriceHistoryJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.syncer.SyncAllPriceHistory(ctx)
	j.log.Info().Int("synced", len(results)).Msg("Price history synced")
	return err
}

// ReinvestDividendsJob drains the pending dividend queue into holdings.
type ReinvestDividendsJob struct {
	reinvestor DividendReinvestor
	timeout    time.Duration
	log        zerolog.Logger
}

// NewReinvestDividendsJob creates a ReinvestDividendsJob bounded by timeout per run.
func NewReinvestDividendsJob(reinvestor DividendReinvestor, timeout time.Duration, log zerolog.Logger) *ReinvestDividendsJob {
	return &ReinvestDividendsJob{
		reinvestor: reinvestor,
		timeout:    timeout,
		log:        log.With().Str("job", "reinvest_dividends").Logger(),
	}
}

// Name returns the job name
func (j *ReinvestDividendsJob) Name() string {
	return "reinvest_dividends"
}

// Run drains the queue. Entries left behind by a failed drain are retried on the next run.
func (j *ReinvestDividendsJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.reinvestor.Reinvest(ctx)
	if len(results) > 0 {
		j.log.Info().Int("processed", len(results)).Msg("Dividends reinvested")
	}
	return err
}
