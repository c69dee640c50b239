package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/validation"
)

// PortfolioHandler handles HTTP requests for holdings, valuation and trades.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Holdings returns every current holding sorted by asset ID.
//
// Endpoint: GET /api/portfolio/holdings
// Response: 200 OK with array of Holding
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.GetHoldings())
}

// Summary values the portfolio and reports totals, weights and sector concentration.
// Assets priced from their cached reference price are listed in stalePrices.
//
// Endpoint: GET /api/portfolio/summary
// Response: 200 OK with PortfolioSummary
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.GetSummary(r.Context()))
}

// Allocations returns each holding's share of total portfolio value.
//
// Endpoint: GET /api/portfolio/allocations
// Response: 200 OK with map of asset ID to weight
func (h *PortfolioHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.GetAllocations(r.Context()))
}

// Buy handles POST requests to buy an asset.
//
// Endpoint: POST /api/portfolio/buy
// Request Body: TradeRequest (symbol, quantity, optional price and timestamp)
// Response: 201 Created with the resulting Holding
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 503 Service Unavailable if no price was given and the market cannot provide one
// Error: 500 Internal Server Error if the trade cannot be persisted
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTradeRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	holding, err := h.portfolioService.Buy(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteTrade)
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}

// Sell handles POST requests to sell an asset.
//
// Endpoint: POST /api/portfolio/sell
// Request Body: TradeRequest (symbol, quantity, optional price and timestamp)
// Response: 200 OK with the remaining Holding (quantity 0 when fully sold)
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the portfolio holds less than the requested quantity
// Error: 503 Service Unavailable if no price was given and the market cannot provide one
func (h *PortfolioHandler) Sell(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTradeRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	holding, err := h.portfolioService.Sell(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteTrade)
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}
