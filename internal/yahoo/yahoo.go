// Package yahoo is a small client for the Yahoo Finance chart API. It is the
// market data provider of the portfolio: current prices, one year of daily
// closes and display names.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client is the market data surface the rest of the application depends on.
type Client interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	HistoricalPrices(ctx context.Context, symbol string) ([]model.PricePoint, error)
	LookupName(ctx context.Context, symbol string) (string, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
// Callers bound each lookup through the request context.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithURL(DefaultBaseURL, &http.Client{})
}

// NewFinanceClientWithURL creates a client against a custom chart endpoint.
func NewFinanceClientWithURL(baseURL string, httpClient *http.Client) *FinanceClient {
	return &FinanceClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CurrentPrice returns the most recent non-zero close of the five day chart.
func (c *FinanceClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.QueryYahooFiveDaySymbol(ctx, symbol)
	if err != nil {
		return 0, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", symbol, err)
	}

	for i := len(chart.Indicators) - 1; i >= 0; i-- {
		if p := chart.Indicators[i].PriceClose; p > 0 {
			return p, nil
		}
	}
	return 0, fmt.Errorf("no non-zero close for %s", symbol)
}

// HistoricalPrices returns one year of daily closes in ascending order.
// Days with a zero close are skipped.
func (c *FinanceClient) HistoricalPrices(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	resp, err := c.QueryYahooSymbolByRange(ctx, symbol, "1y")
	if err != nil {
		return nil, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	points := make([]model.PricePoint, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		if ind.PriceClose > 0 {
			points = append(points, model.PricePoint{Timestamp: ind.Date, Close: ind.PriceClose})
		}
	}
	return points, nil
}

// LookupName returns the long name of symbol, falling back to the short name.
func (c *FinanceClient) LookupName(ctx context.Context, symbol string) (string, error) {
	resp, err := c.QueryYahooFiveDaySymbol(ctx, symbol)
	if err != nil {
		return "", err
	}
	meta := resp.Chart.Result[0].Meta
	if meta.LongName != "" {
		return meta.LongName, nil
	}
	if meta.Shortname != "" {
		return meta.Shortname, nil
	}
	return "", fmt.Errorf("no name returned for symbol %s", symbol)
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present and as long as the timestamps
//
// Data points whose close is null are dropped; other null fields read as zero.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceOpen:  floatAt(quote.Open, i),
			PriceClose: *quote.Close[i],
			Volume:     intAt(quote.Volume, i),
			PriceHigh:  floatAt(quote.High, i),
			PriceLow:   floatAt(quote.Low, i),
		})
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

func floatAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	return c.QueryYahooSymbolByRange(ctx, symbol, "5d")
}

// QueryYahooSymbolByRange fetches daily price data for a Yahoo range such as "5d" or "1y".
func (c *FinanceClient) QueryYahooSymbolByRange(ctx context.Context, symbol, rng string) (Response, error) {
	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// queryYahoo executes a request against the chart API and decodes the
// response. It sets a browser User-Agent because Yahoo rejects the default
// Go one.
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}
