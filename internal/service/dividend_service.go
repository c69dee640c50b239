package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/dividend"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/symbols"
)

// DividendService credits dividends and reinvests them into the paying asset.
type DividendService struct {
	queue     *dividend.Queue
	portfolio *portfolio.Portfolio
	log       zerolog.Logger
}

// NewDividendService creates a new DividendService.
func NewDividendService(queue *dividend.Queue, p *portfolio.Portfolio, log zerolog.Logger) *DividendService {
	return &DividendService{
		queue:     queue,
		portfolio: p,
		log:       log.With().Str("component", "dividend_service").Logger(),
	}
}

// Credit queues a dividend for reinvestment. When the asset is held the cash
// is also recorded in the ledger as a dividend entry. A failure at either
// step leaves both queue and ledger as they were.
func (s *DividendService) Credit(ctx context.Context, req request.CreditDividendRequest) (model.PendingDividend, error) {
	symbol := symbols.Normalize(req.Symbol)
	at, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return model.PendingDividend{}, err
	}

	d, err := s.queue.Credit(ctx, symbol, req.CashAmount, at)
	if err != nil {
		return model.PendingDividend{}, err
	}

	if _, held := s.portfolio.Holding(symbol); !held {
		s.log.Warn().Str("asset", symbol).Msg("Dividend credited for asset not held, it will be dropped on reinvestment")
		return d, nil
	}

	if _, err := s.portfolio.RecordDividend(ctx, symbol, req.CashAmount, d.CreditedAt); err != nil {
		if cancelErr := s.queue.Cancel(ctx, d.ID); cancelErr != nil {
			s.log.Error().Err(cancelErr).Str("dividend", d.ID).Msg("Failed to withdraw queued dividend")
			return model.PendingDividend{}, errors.Join(err, cancelErr)
		}
		return model.PendingDividend{}, err
	}
	return d, nil
}

// GetPending returns queued dividends in arrival order.
func (s *DividendService) GetPending() []model.PendingDividend {
	return s.queue.Pending()
}

// Reinvest drains the queue into the portfolio.
func (s *DividendService) Reinvest(ctx context.Context) ([]model.Reinvestment, error) {
	return s.queue.DrainAndReinvest(ctx, s.portfolio)
}
