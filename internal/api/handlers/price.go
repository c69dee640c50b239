package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
)

// PriceHandler serves current prices and stored price history.
type PriceHandler struct {
	portfolioService *service.PortfolioService
	analyticsService *service.AnalyticsService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(portfolioService *service.PortfolioService, analyticsService *service.AnalyticsService) *PriceHandler {
	return &PriceHandler{
		portfolioService: portfolioService,
		analyticsService: analyticsService,
	}
}

// Price returns the current price of a symbol with its display name.
// Held assets fall back to their cached price when the market is slow.
//
// Endpoint: GET /api/price/{symbol}
// Response: 200 OK with PriceQuote
// Error: 400 Bad Request if symbol is invalid (validated by middleware)
// Error: 503 Service Unavailable if no price can be produced
func (h *PriceHandler) Price(w http.ResponseWriter, r *http.Request) {
	quote, err := h.portfolioService.GetPrice(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePrice)
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// History returns the stored closing prices of a symbol in ascending time
// order, optionally limited to an inclusive date range.
//
// Endpoint: GET /api/price/{symbol}/history?from=2024-01-01&to=2024-06-30
// Response: 200 OK with array of PricePoint (empty when nothing is stored)
// Error: 400 Bad Request if a date is malformed or from is after to
func (h *PriceHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := request.ParseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	points := h.analyticsService.PriceHistory(chi.URLParam(r, "symbol"), from, to)
	if points == nil {
		response.RespondJSON(w, http.StatusOK, []any{})
		return
	}
	response.RespondJSON(w, http.StatusOK, points)
}

// Sync downloads and stores one year of closing prices for a symbol.
//
// Endpoint: POST /api/price/{symbol}/sync
// Response: 200 OK with PriceSyncResponse
// Error: 503 Service Unavailable if the market data provider fails
// Error: 500 Internal Server Error if prices cannot be persisted
func (h *PriceHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.SyncPriceHistory(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSyncPriceHistory)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Refresh updates the cached reference price of every holding. Assets whose
// lookup failed keep their cached price and are listed under errors.
//
// Endpoint: POST /api/price/refresh
// Response: 200 OK with PriceRefreshResult
// Error: 500 Internal Server Error if updated prices cannot be persisted
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.portfolioService.RefreshPrices(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePrice)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
