package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined data instead of making actual API calls. Per-symbol
// prices and errors take precedence over the shared MockResponse.
type MockYahooClient struct {
	mu sync.Mutex

	// MockResponse is the chart returned for symbols without a specific price
	MockResponse yahoo.Response
	// MockError is the error returned for every query
	MockError error
	// Prices holds a fixed current price per symbol
	Prices map[string]float64
	// Errors holds a failure per symbol
	Errors map[string]error
	// QueryCount tracks how many times a query method was called
	QueryCount int
}

// NewMockYahooClient creates a new mock Yahoo client with default test data.
// The default data includes 5 days of historical prices suitable for testing.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(5),
		Prices:       map[string]float64{},
		Errors:       map[string]error{},
	}
}

func (m *MockYahooClient) chart(symbol string) (yahoo.PriceChart, error) {
	m.mu.Lock()
	m.QueryCount++
	resp, mockErr := m.MockResponse, m.MockError
	symbolErr := m.Errors[strings.ToUpper(symbol)]
	m.mu.Unlock()

	if mockErr != nil {
		return yahoo.PriceChart{}, mockErr
	}
	if symbolErr != nil {
		return yahoo.PriceChart{}, symbolErr
	}
	// Use the real implementation for parsing since it's deterministic
	return yahoo.NewFinanceClient().ParseChart(resp)
}

// CurrentPrice returns the configured price for symbol, or the last close of MockResponse.
func (m *MockYahooClient) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	chart, err := m.chart(symbol)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	price, ok := m.Prices[strings.ToUpper(symbol)]
	m.mu.Unlock()
	if ok {
		return price, nil
	}

	if len(chart.Indicators) == 0 {
		return 0, fmt.Errorf("no close for %s", symbol)
	}
	return chart.Indicators[len(chart.Indicators)-1].PriceClose, nil
}

// HistoricalPrices returns the closes of MockResponse.
func (m *MockYahooClient) HistoricalPrices(_ context.Context, symbol string) ([]model.PricePoint, error) {
	chart, err := m.chart(symbol)
	if err != nil {
		return nil, err
	}
	points := make([]model.PricePoint, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		points = append(points, model.PricePoint{Timestamp: ind.Date, Close: ind.PriceClose})
	}
	return points, nil
}

// LookupName returns the long name of MockResponse.
func (m *MockYahooClient) LookupName(_ context.Context, symbol string) (string, error) {
	chart, err := m.chart(symbol)
	if err != nil {
		return "", err
	}
	return chart.LongName, nil
}

// WithError configures the mock to return the specified error for every symbol.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithSymbolError configures the mock to fail for one symbol.
func (m *MockYahooClient) WithSymbolError(symbol string, err error) *MockYahooClient {
	m.Errors[strings.ToUpper(symbol)] = err
	return m
}

// WithPrice configures a fixed current price for one symbol.
func (m *MockYahooClient) WithPrice(symbol string, price float64) *MockYahooClient {
	m.Prices[strings.ToUpper(symbol)] = price
	return m
}

// WithResponse configures the mock to return the specified response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// WithEmptyResponse configures the mock to return an empty response (no data).
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.MockResponse = yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
		},
	}
	return m
}

// CreateMockYahooResponse creates a mock Yahoo Finance API response with test data.
// The response includes `days` number of days of price data, ending yesterday,
// with closes 100.25, 100.75, 101.25 and so on.
func CreateMockYahooResponse(days int) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	timestamps := make([]int64, days)
	opens := make([]*float64, days)
	highs := make([]*float64, days)
	lows := make([]*float64, days)
	closes := make([]*float64, days)
	volumes := make([]*int64, days)

	// Generate realistic price data for testing
	basePrice := 100.0
	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		// Simulate price movement
		dayPrice := basePrice + float64(i)*0.5
		open := dayPrice
		high := dayPrice + 1.0
		low := dayPrice - 0.5
		closePrice := dayPrice + 0.25
		volume := int64(1000000 + i*10000)

		opens[i] = &open
		highs[i] = &high
		lows[i] = &low
		closes[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           "TEST",
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         "Test Asset Inc.",
						Shortname:        "TEST",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
			Error: nil,
		},
	}
}

// CreateMockYahooErrorResponse creates a mock Yahoo response with an error.
// Useful for testing error handling scenarios.
func CreateMockYahooErrorResponse(errorMsg string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
			Error:  &errorMsg,
		},
	}
}
