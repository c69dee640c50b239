package ledger

import (
	"testing"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func tx(asset string, kind model.TransactionKind, amount float64, d int) model.Transaction {
	return model.Transaction{ID: asset + string(kind), AssetID: asset, Kind: kind, Amount: amount, Price: 10, Timestamp: at(d)}
}

func TestLedger_AppendAndQueryByAsset(t *testing.T) {
	l := New()
	require.NoError(t, l.Append(tx("AAPL", model.KindBuy, 10, 1)))
	require.NoError(t, l.Append(tx("MSFT", model.KindBuy, 5, 2)))
	require.NoError(t, l.Append(tx("AAPL", model.KindSell, 3, 3)))

	assert.Equal(t, 3, l.Len())

	aapl := l.ForAsset("AAPL")
	require.Len(t, aapl, 2)
	assert.Equal(t, model.KindBuy, aapl[0].Kind)
	assert.Equal(t, model.KindSell, aapl[1].Kind)

	assert.Empty(t, l.ForAsset("TSLA"))
}

func TestLedger_AppendRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		tx   model.Transaction
		want error
	}{
		{"empty asset", model.Transaction{Kind: model.KindBuy, Amount: 1}, apperrors.ErrEmptyID},
		{"unknown kind", model.Transaction{AssetID: "A", Kind: "fee", Amount: 1}, apperrors.ErrInvalidTransactionKind},
		{"zero amount", model.Transaction{AssetID: "A", Kind: model.KindBuy}, apperrors.ErrInvalidQuantity},
		{"negative price", model.Transaction{AssetID: "A", Kind: model.KindBuy, Amount: 1, Price: -1}, apperrors.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			err := l.Append(tt.tx)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, l.Len())
		})
	}
}

func TestLedger_QueryDateRange(t *testing.T) {
	l := New()
	for d := 1; d <= 5; d++ {
		require.NoError(t, l.Append(tx("AAPL", model.KindBuy, float64(d), d)))
	}
	require.NoError(t, l.Append(tx("MSFT", model.KindBuy, 1, 3)))

	t.Run("inclusive bounds", func(t *testing.T) {
		got, err := l.Query(model.TransactionFilter{AssetID: "AAPL", From: at(2), To: at(4)})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 2.0, got[0].Amount)
		assert.Equal(t, 4.0, got[2].Amount)
	})

	t.Run("open bounds across assets", func(t *testing.T) {
		got, err := l.Query(model.TransactionFilter{From: at(3)})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := l.Query(model.TransactionFilter{From: at(4), To: at(2)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
	})
}

func TestLedger_AllIsACopy(t *testing.T) {
	l := New()
	require.NoError(t, l.Append(tx("AAPL", model.KindBuy, 1, 1)))

	all := l.All()
	all[0].Amount = 99

	assert.Equal(t, 1.0, l.All()[0].Amount)
}
