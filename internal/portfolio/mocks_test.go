package portfolio

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// MockMarketData is a testify mock of MarketData.
type MockMarketData struct {
	mock.Mock
}

func (m *MockMarketData) CurrentPrice(ctx context.Context, assetID string) (float64, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockMarketData) HistoricalPrices(ctx context.Context, assetID string) ([]model.PricePoint, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricePoint), args.Error(1)
}

var errStoreDown = errors.New("store unavailable")

// memoryStore is an in-memory Persistence with switchable failures.
type memoryStore struct {
	mu           sync.Mutex
	assets       map[string]model.Asset
	transactions []model.Transaction
	failAppend   bool
	failUpsert   bool
	failUpsertID string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{assets: map[string]model.Asset{}}
}

func (s *memoryStore) AppendTransaction(_ context.Context, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return errStoreDown
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *memoryStore) UpsertAsset(_ context.Context, asset model.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert || asset.ID == s.failUpsertID {
		return errStoreDown
	}
	s.assets[asset.ID] = asset
	return nil
}

func (s *memoryStore) LoadHoldings(_ context.Context) (map[string]model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quantities := map[string]float64{}
	for _, tx := range s.transactions {
		switch tx.Kind {
		case model.KindBuy:
			quantities[tx.AssetID] += tx.Amount
		case model.KindSell:
			quantities[tx.AssetID] -= tx.Amount
		}
	}
	out := map[string]model.Holding{}
	for id, q := range quantities {
		if q > 0 {
			out[id] = model.Holding{Asset: s.assets[id], Quantity: q}
		}
	}
	return out, nil
}

func (s *memoryStore) LoadTransactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.transactions...), nil
}
