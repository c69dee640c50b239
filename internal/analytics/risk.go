package analytics

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// PriceHistory gives ordered close prices per asset.
type PriceHistory interface {
	Closes(assetID string) []float64
	AssetIDs() []string
}

// RiskEngine derives volatility figures from a PriceHistory.
type RiskEngine struct {
	history PriceHistory
}

// NewRiskEngine creates a RiskEngine reading from history.
func NewRiskEngine(history PriceHistory) *RiskEngine {
	return &RiskEngine{history: history}
}

// Returns converts prices to simple period returns,
// r[i] = (p[i+1] - p[i]) / p[i]. A zero previous price yields a zero return.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// Volatility returns the population standard deviation of the simple returns
// of prices. It is 0 when fewer than two prices are given.
func Volatility(prices []float64) float64 {
	returns := Returns(prices)
	if len(returns) == 0 {
		return 0
	}
	return stat.PopStdDev(returns, nil)
}

// Volatility returns the volatility of one asset's full price series.
func (e *RiskEngine) Volatility(assetID string) float64 {
	return Volatility(e.history.Closes(assetID))
}

// GenerateAlerts returns an alert for every asset whose volatility is
// strictly greater than threshold, sorted by asset ID.
func (e *RiskEngine) GenerateAlerts(threshold float64) []model.RiskAlert {
	ids := e.history.AssetIDs()
	slices.Sort(ids)

	alerts := []model.RiskAlert{}
	for _, id := range ids {
		if v := e.Volatility(id); v > threshold {
			alerts = append(alerts, model.RiskAlert{AssetID: id, Volatility: v})
		}
	}
	return alerts
}
