package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/testutil"
)

func TestRiskHandler(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) *RiskHandler {
		t.Helper()
		db := testutil.SetupTestDB(t)
		// Returns +0.1 and -0.1: population standard deviation 0.1
		testutil.CreatePriceHistory(t, db, "AAPL", start, 100, 110, 99)
		// Returns 0.01 and about -0.0099: volatility below 0.05
		testutil.CreatePriceHistory(t, db, "BND", start, 100, 101, 100)
		svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())
		return NewRiskHandler(svc.AnalyticsService)
	}

	t.Run("volatility of a stored series", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/risk/volatility/AAPL", map[string]string{"symbol": "aapl"})
		w := httptest.NewRecorder()
		handler.Volatility(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.VolatilityReport
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&report)

		if report.AssetID != "AAPL" || report.Observations != 3 {
			t.Errorf("Unexpected report: %+v", report)
		}
		if math.Abs(report.Volatility-0.1) > 1e-9 {
			t.Errorf("Expected volatility 0.1, got %v", report.Volatility)
		}
		if report.LastClose != 99 || report.LastObserved == nil || !report.LastObserved.Equal(start.AddDate(0, 0, 2)) {
			t.Errorf("Expected last close 99 on day 3, got %v at %v", report.LastClose, report.LastObserved)
		}
	})

	t.Run("unknown symbol has zero volatility", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/risk/volatility/TSLA", map[string]string{"symbol": "TSLA"})
		w := httptest.NewRecorder()
		handler.Volatility(w, req)

		var report model.VolatilityReport
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&report)

		if report.Volatility != 0 || report.Observations != 0 {
			t.Errorf("Expected empty report, got %+v", report)
		}
	})

	t.Run("alerts use the default threshold", func(t *testing.T) {
		handler := setup(t)

		w := httptest.NewRecorder()
		handler.Alerts(w, httptest.NewRequest(http.MethodGet, "/api/risk/alerts", nil))

		var alerts []model.RiskAlert
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&alerts)

		if len(alerts) != 1 || alerts[0].AssetID != "AAPL" {
			t.Errorf("Expected only AAPL above %v, got %+v", testutil.DefaultRiskThreshold, alerts)
		}
	})

	t.Run("alerts honour an explicit threshold", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/risk/alerts", map[string]string{"threshold": "0.001"})
		w := httptest.NewRecorder()
		handler.Alerts(w, req)

		var alerts []model.RiskAlert
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&alerts)

		if len(alerts) != 2 || alerts[0].AssetID != "AAPL" || alerts[1].AssetID != "BND" {
			t.Errorf("Expected AAPL and BND sorted, got %+v", alerts)
		}
	})

	t.Run("threshold above every volatility yields no alerts", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/risk/alerts", map[string]string{"threshold": "0.2"})
		w := httptest.NewRecorder()
		handler.Alerts(w, req)

		var alerts []model.RiskAlert
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&alerts)

		if len(alerts) != 0 {
			t.Errorf("Expected no alerts, got %+v", alerts)
		}
	})

	t.Run("returns 400 for a non-numeric threshold", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/risk/alerts", map[string]string{"threshold": "high"})
		w := httptest.NewRecorder()
		handler.Alerts(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
