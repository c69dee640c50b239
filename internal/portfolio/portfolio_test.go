package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

var (
	apple     = model.Asset{ID: "AAPL", Name: "Apple Inc.", Sector: "Technology"}
	microsoft = model.Asset{ID: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"}
	ts        = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func newTestPortfolio(t *testing.T, store Persistence, market MarketData) *Portfolio {
	t.Helper()
	return New(store, market, zerolog.Nop(), Options{PriceTimeout: time.Second, Concurrency: 2})
}

func TestPortfolio_AddHolding(t *testing.T) {
	t.Run("creates holding seeded with price", func(t *testing.T) {
		store := newMemoryStore()
		p := newTestPortfolio(t, store, nil)

		h, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)

		assert.Equal(t, 10.0, h.Quantity)
		assert.Equal(t, 150.0, h.Asset.ReferencePrice)
		assert.Equal(t, 1, p.LedgerLen())
		assert.Len(t, store.transactions, 1)
		assert.Equal(t, "Apple Inc.", store.assets["AAPL"].Name)
	})

	t.Run("increments existing holding without reseeding price", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)

		h, err := p.AddHolding(context.Background(), apple, 5, 200, ts)
		require.NoError(t, err)

		assert.Equal(t, 15.0, h.Quantity)
		assert.Equal(t, 150.0, h.Asset.ReferencePrice)
		assert.Equal(t, 2, p.LedgerLen())
	})

	t.Run("rejects non-positive quantity and negative price", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)

		_, err := p.AddHolding(context.Background(), apple, 0, 150, ts)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

		_, err = p.AddHolding(context.Background(), apple, 1, -1, ts)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

		_, held := p.Holding("AAPL")
		assert.False(t, held)
		assert.Equal(t, 0, p.LedgerLen())
	})

	t.Run("persistence failure leaves state unchanged", func(t *testing.T) {
		store := newMemoryStore()
		store.failAppend = true
		p := newTestPortfolio(t, store, nil)

		_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		assert.ErrorIs(t, err, errStoreDown)

		_, held := p.Holding("AAPL")
		assert.False(t, held)
		assert.Equal(t, 0, p.LedgerLen())
	})

	t.Run("zero timestamp defaults to now", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		p.now = func() time.Time { return fixed }

		_, err := p.AddHolding(context.Background(), apple, 1, 1, time.Time{})
		require.NoError(t, err)

		txs, err := p.Transactions(model.TransactionFilter{})
		require.NoError(t, err)
		assert.Equal(t, fixed, txs[0].Timestamp)
	})
}

func TestPortfolio_RemoveHolding(t *testing.T) {
	t.Run("add then remove restores prior state with two ledger entries", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		_, err := p.AddHolding(context.Background(), microsoft, 5, 300, ts)
		require.NoError(t, err)
		before := p.Holdings()
		ledgerBefore := p.LedgerLen()

		_, err = p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)
		h, err := p.RemoveHolding(context.Background(), "AAPL", 10, 160, ts)
		require.NoError(t, err)

		assert.Equal(t, 0.0, h.Quantity)
		assert.Equal(t, before, p.Holdings())
		assert.Equal(t, ledgerBefore+2, p.LedgerLen())

		txs, err := p.Transactions(model.TransactionFilter{AssetID: "AAPL"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, model.KindBuy, txs[0].Kind)
		assert.Equal(t, model.KindSell, txs[1].Kind)
	})

	t.Run("partial sell keeps holding", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)

		h, err := p.RemoveHolding(context.Background(), "AAPL", 4, 150, ts)
		require.NoError(t, err)
		assert.Equal(t, 6.0, h.Quantity)

		held, ok := p.Holding("AAPL")
		require.True(t, ok)
		assert.Equal(t, 6.0, held.Quantity)
	})

	t.Run("selling more than held fails without ledger entry", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)

		_, err = p.RemoveHolding(context.Background(), "AAPL", 11, 150, ts)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientQuantity)
		assert.Equal(t, 1, p.LedgerLen())

		held, _ := p.Holding("AAPL")
		assert.Equal(t, 10.0, held.Quantity)
	})

	t.Run("selling an unheld asset fails", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)

		_, err := p.RemoveHolding(context.Background(), "TSLA", 1, 100, ts)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientQuantity)
		assert.Equal(t, 0, p.LedgerLen())
	})

	t.Run("persistence failure leaves holding untouched", func(t *testing.T) {
		store := newMemoryStore()
		p := newTestPortfolio(t, store, nil)
		_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
		require.NoError(t, err)
		store.failAppend = true

		_, err = p.RemoveHolding(context.Background(), "AAPL", 5, 150, ts)
		assert.ErrorIs(t, err, errStoreDown)

		held, _ := p.Holding("AAPL")
		assert.Equal(t, 10.0, held.Quantity)
		assert.Equal(t, 1, p.LedgerLen())
	})
}

func TestPortfolio_ValuationScenario(t *testing.T) {
	p := newTestPortfolio(t, nil, nil)
	_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
	require.NoError(t, err)
	_, err = p.AddHolding(context.Background(), microsoft, 5, 300, ts)
	require.NoError(t, err)

	assert.InDelta(t, 3000.0, p.TotalValue(context.Background()), 1e-9)

	allocations := p.Allocations(context.Background())
	require.Len(t, allocations, 2)
	assert.InDelta(t, 0.5, allocations["AAPL"], 1e-9)
	assert.InDelta(t, 0.5, allocations["MSFT"], 1e-9)
}

func TestPortfolio_AllocationsEmptyWhenTotalIsZero(t *testing.T) {
	p := newTestPortfolio(t, nil, nil)
	assert.Empty(t, p.Allocations(context.Background()))

	_, err := p.AddHolding(context.Background(), apple, 10, 0, ts)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.TotalValue(context.Background()))
	assert.Empty(t, p.Allocations(context.Background()))
}

func TestPortfolio_ValuationUsesMarketAndFallsBack(t *testing.T) {
	market := new(MockMarketData)
	market.On("CurrentPrice", mock.Anything, "AAPL").Return(200.0, nil)
	market.On("CurrentPrice", mock.Anything, "MSFT").Return(0.0, errors.New("timeout"))

	p := newTestPortfolio(t, nil, market)
	_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
	require.NoError(t, err)
	_, err = p.AddHolding(context.Background(), microsoft, 5, 300, ts)
	require.NoError(t, err)

	v := p.Valuation(context.Background())

	assert.Equal(t, 200.0, v.Prices["AAPL"])
	assert.Equal(t, 300.0, v.Prices["MSFT"])
	assert.Equal(t, []string{"MSFT"}, v.Stale)
	assert.InDelta(t, 3500.0, v.Total(), 1e-9)
	market.AssertExpectations(t)
}

func TestPortfolio_CurrentPrice(t *testing.T) {
	t.Run("market failure is price unavailable", func(t *testing.T) {
		market := new(MockMarketData)
		market.On("CurrentPrice", mock.Anything, "AAPL").Return(0.0, errors.New("boom"))
		p := newTestPortfolio(t, nil, market)

		_, err := p.CurrentPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
	})

	t.Run("zero price is price unavailable", func(t *testing.T) {
		market := new(MockMarketData)
		market.On("CurrentPrice", mock.Anything, "AAPL").Return(0.0, nil)
		p := newTestPortfolio(t, nil, market)

		_, err := p.CurrentPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
	})

	t.Run("no market provider", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)

		_, err := p.CurrentPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
	})

	t.Run("price or cached falls back for held asset", func(t *testing.T) {
		market := new(MockMarketData)
		market.On("CurrentPrice", mock.Anything, mock.Anything).Return(0.0, errors.New("down"))
		p := newTestPortfolio(t, nil, market)
		_, err := p.AddHolding(context.Background(), apple, 1, 150, ts)
		require.NoError(t, err)

		price, stale, err := p.PriceOrCached(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, stale)
		assert.Equal(t, 150.0, price)

		_, _, err = p.PriceOrCached(context.Background(), "TSLA")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
	})
}

func TestPortfolio_RefreshPrices(t *testing.T) {
	market := new(MockMarketData)
	market.On("CurrentPrice", mock.Anything, "AAPL").Return(180.0, nil)
	market.On("CurrentPrice", mock.Anything, "MSFT").Return(0.0, errors.New("down"))

	store := newMemoryStore()
	p := newTestPortfolio(t, store, market)
	_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
	require.NoError(t, err)
	_, err = p.AddHolding(context.Background(), microsoft, 5, 300, ts)
	require.NoError(t, err)

	result, err := p.RefreshPrices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, result.Updated)
	assert.Contains(t, result.Errors, "MSFT")

	h, _ := p.Holding("AAPL")
	assert.Equal(t, 180.0, h.Asset.ReferencePrice)
	assert.Equal(t, 180.0, store.assets["AAPL"].ReferencePrice)

	h, _ = p.Holding("MSFT")
	assert.Equal(t, 300.0, h.Asset.ReferencePrice)
}

func TestPortfolio_RefreshPricesPartialStoreFailure(t *testing.T) {
	market := new(MockMarketData)
	market.On("CurrentPrice", mock.Anything, "AAPL").Return(180.0, nil)
	market.On("CurrentPrice", mock.Anything, "MSFT").Return(320.0, nil)
	market.On("CurrentPrice", mock.Anything, "XOM").Return(110.0, nil)

	store := newMemoryStore()
	p := newTestPortfolio(t, store, market)
	xom := model.Asset{ID: "XOM", Name: "Exxon Mobil", Sector: "Energy"}
	for _, a := range []model.Asset{xom, microsoft, apple} {
		_, err := p.AddHolding(context.Background(), a, 1, 100, ts)
		require.NoError(t, err)
	}
	store.failUpsertID = "MSFT"

	result, err := p.RefreshPrices(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"AAPL", "XOM"}, result.Updated)
	assert.Contains(t, result.Errors, "MSFT")

	// Memory follows the store: the unpersisted price is not applied.
	h, _ := p.Holding("MSFT")
	assert.Equal(t, 100.0, h.Asset.ReferencePrice)
	assert.Equal(t, 100.0, store.assets["MSFT"].ReferencePrice)
	h, _ = p.Holding("XOM")
	assert.Equal(t, 110.0, h.Asset.ReferencePrice)
}

func TestPortfolio_RecordDividend(t *testing.T) {
	p := newTestPortfolio(t, nil, nil)
	_, err := p.AddHolding(context.Background(), apple, 10, 150, ts)
	require.NoError(t, err)

	tx, err := p.RecordDividend(context.Background(), "AAPL", 50, ts)
	require.NoError(t, err)
	assert.Equal(t, model.KindDividend, tx.Kind)
	assert.Equal(t, 50.0, tx.Amount)

	held, _ := p.Holding("AAPL")
	assert.Equal(t, 10.0, held.Quantity)

	_, err = p.RecordDividend(context.Background(), "TSLA", 50, ts)
	assert.ErrorIs(t, err, apperrors.ErrHoldingNotFound)
}

func TestLoad(t *testing.T) {
	store := newMemoryStore()
	original := newTestPortfolio(t, store, nil)
	_, err := original.AddHolding(context.Background(), apple, 10, 150, ts)
	require.NoError(t, err)
	_, err = original.AddHolding(context.Background(), microsoft, 5, 300, ts)
	require.NoError(t, err)
	_, err = original.RemoveHolding(context.Background(), "MSFT", 5, 300, ts)
	require.NoError(t, err)

	restored, err := Load(context.Background(), store, nil, zerolog.Nop(), Options{})
	require.NoError(t, err)

	assert.Equal(t, original.Holdings(), restored.Holdings())
	assert.Equal(t, 3, restored.LedgerLen())
}

func TestPortfolio_FreshPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("prices every asset", func(t *testing.T) {
		market := new(MockMarketData)
		market.On("CurrentPrice", mock.Anything, "AAPL").Return(100.0, nil)
		market.On("CurrentPrice", mock.Anything, "MSFT").Return(300.0, nil)
		p := newTestPortfolio(t, nil, market)

		prices, err := p.FreshPrices(ctx, []string{"AAPL", "MSFT"})
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"AAPL": 100, "MSFT": 300}, prices)
	})

	t.Run("any failure fails the whole lookup", func(t *testing.T) {
		market := new(MockMarketData)
		market.On("CurrentPrice", mock.Anything, "AAPL").Return(100.0, nil).Maybe()
		market.On("CurrentPrice", mock.Anything, "TSLA").Return(0.0, errors.New("timeout"))
		p := newTestPortfolio(t, nil, market)

		prices, err := p.FreshPrices(ctx, []string{"AAPL", "TSLA"})
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
		assert.Nil(t, prices)
	})

	t.Run("no ids", func(t *testing.T) {
		p := newTestPortfolio(t, nil, nil)
		prices, err := p.FreshPrices(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, prices)
	})
}
