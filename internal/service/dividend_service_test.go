package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/dividend"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/testutil"
)

// rejectingDividendStore fails every insert and otherwise behaves like the repository.
type rejectingDividendStore struct {
	*repository.DividendRepository
}

func (rejectingDividendStore) InsertPendingDividend(context.Context, model.PendingDividend) error {
	return errors.New("disk full")
}

func TestDividendService_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("held asset records a ledger dividend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())
		buy(t, svc, "AAA", 10, 100)

		d, err := svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "aaa", CashAmount: 25})
		require.NoError(t, err)
		assert.Equal(t, "AAA", d.AssetID)
		assert.NotEmpty(t, d.ID)

		txs, err := svc.PortfolioService.GetTransactions(model.TransactionFilter{AssetID: "AAA"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, model.KindDividend, txs[1].Kind)
		assert.Equal(t, 25.0, txs[1].Amount)

		assert.Len(t, svc.DividendService.GetPending(), 1)
		testutil.AssertRowCount(t, db, "pending_dividend", 1)
	})

	t.Run("unheld asset is queued without a ledger entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())

		_, err := svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "ZZZ", CashAmount: 5})
		require.NoError(t, err)

		assert.Equal(t, 0, svc.Portfolio.LedgerLen())
		assert.Len(t, svc.DividendService.GetPending(), 1)
	})

	t.Run("failed queue insert leaves the ledger unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())
		buy(t, svc, "AAA", 10, 100)

		queue := dividend.NewQueue(rejectingDividendStore{repository.NewDividendRepository(db)}, zerolog.Nop())
		dividends := service.NewDividendService(queue, svc.Portfolio, zerolog.Nop())

		_, err := dividends.Credit(ctx, request.CreditDividendRequest{Symbol: "AAA", CashAmount: 25})
		require.Error(t, err)

		assert.Equal(t, 1, svc.Portfolio.LedgerLen())
		testutil.AssertRowCount(t, db, `"transaction"`, 1)
		assert.Equal(t, 0, queue.Len())
	})

	t.Run("failed ledger write withdraws the queued dividend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())
		buy(t, svc, "AAA", 10, 100)
		_, err := db.Exec(`DROP TABLE "transaction"`)
		require.NoError(t, err)

		_, err = svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "AAA", CashAmount: 25})
		require.Error(t, err)

		assert.Equal(t, 1, svc.Portfolio.LedgerLen())
		assert.Empty(t, svc.DividendService.GetPending())
		testutil.AssertRowCount(t, db, "pending_dividend", 0)
	})

	t.Run("rejects a malformed timestamp", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())

		_, err := svc.DividendService.Credit(ctx, request.CreditDividendRequest{
			Symbol:     "AAA",
			CashAmount: 5,
			Timestamp:  "yesterday",
		})
		assert.Error(t, err)
		assert.Empty(t, svc.DividendService.GetPending())
	})
}

func TestDividendService_Reinvest(t *testing.T) {
	ctx := context.Background()

	t.Run("buys units at the current price and drops unheld assets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockYahooClient().WithPrice("AAA", 50)
		svc := testutil.NewTestServices(t, db, client)
		buy(t, svc, "AAA", 10, 50)

		_, err := svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "ZZZ", CashAmount: 5})
		require.NoError(t, err)
		_, err = svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "AAA", CashAmount: 100})
		require.NoError(t, err)

		results, err := svc.DividendService.Reinvest(ctx)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, model.ReinvestmentStatusDropped, results[0].Status)
		assert.Equal(t, model.ReinvestmentStatusReinvested, results[1].Status)
		assert.Equal(t, 2.0, results[1].Quantity)

		h, ok := svc.Portfolio.Holding("AAA")
		require.True(t, ok)
		assert.Equal(t, 12.0, h.Quantity)
		_, held := svc.Portfolio.Holding("ZZZ")
		assert.False(t, held)

		assert.Empty(t, svc.DividendService.GetPending())
		testutil.AssertRowCount(t, db, "pending_dividend", 0)
	})

	t.Run("keeps the failing dividend queued", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockYahooClient().WithPrice("AAA", 50)
		svc := testutil.NewTestServices(t, db, client)
		buy(t, svc, "AAA", 10, 50)

		_, err := svc.DividendService.Credit(ctx, request.CreditDividendRequest{Symbol: "AAA", CashAmount: 100})
		require.NoError(t, err)
		client.WithSymbolError("AAA", errors.New("down"))

		results, err := svc.DividendService.Reinvest(ctx)
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
		assert.Empty(t, results)
		assert.Len(t, svc.DividendService.GetPending(), 1)

		h, _ := svc.Portfolio.Holding("AAA")
		assert.Equal(t, 10.0, h.Quantity)
	})
}
