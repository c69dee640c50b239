package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
)

// RiskHandler serves volatility figures and risk alerts.
type RiskHandler struct {
	analyticsService *service.AnalyticsService
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(analyticsService *service.AnalyticsService) *RiskHandler {
	return &RiskHandler{
		analyticsService: analyticsService,
	}
}

// Volatility reports the population standard deviation of simple returns
// over the stored price series of a symbol. Unknown symbols report 0.
//
// Endpoint: GET /api/risk/volatility/{symbol}
// Response: 200 OK with VolatilityReport
// Error: 400 Bad Request if symbol is invalid (validated by middleware)
func (h *RiskHandler) Volatility(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	response.RespondJSON(w, http.StatusOK, h.analyticsService.Volatility(symbol))
}

// Alerts lists assets whose volatility is strictly above the threshold.
//
// Endpoint: GET /api/risk/alerts?threshold=0.05
// Response: 200 OK with array of RiskAlert sorted by asset ID
// Error: 400 Bad Request if threshold is not a number
func (h *RiskHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	threshold, err := parseOptionalFloat(r, "threshold")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.analyticsService.Alerts(threshold))
}
