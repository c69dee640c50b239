package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/validation"
)

// AnalyticsHandler serves allocation, diversification and rebalancing calculations.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	portfolioService *service.PortfolioService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, portfolioService *service.PortfolioService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		portfolioService: portfolioService,
	}
}

// Allocation converts priority scores into fractional weights summing to 1.
//
// Endpoint: POST /api/analytics/allocation
// Request Body: AllocationRequest (priorities)
// Response: 200 OK with map of asset ID to weight
// Error: 400 Bad Request if priorities are empty, negative or all zero
func (h *AnalyticsHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AllocationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAllocationRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	weights, err := h.analyticsService.Allocation(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrEmptyInput)
		return
	}

	response.RespondJSON(w, http.StatusOK, weights)
}

// Diversification computes the share of assets per sector for the given mapping.
//
// Endpoint: POST /api/analytics/diversification
// Request Body: DiversificationRequest (sectors)
// Response: 200 OK with map of sector to share (empty for empty input)
func (h *AnalyticsHandler) Diversification(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DiversificationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDiversificationRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.analyticsService.Diversification(req))
}

// PortfolioDiversification computes sector shares over the current holdings.
//
// Endpoint: GET /api/analytics/diversification
// Response: 200 OK with map of sector to share
func (h *AnalyticsHandler) PortfolioDiversification(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.analyticsService.PortfolioDiversification())
}

// Rebalance returns target minus current weight for every target asset.
// When current is omitted the live portfolio allocation is used.
//
// Endpoint: POST /api/analytics/rebalance
// Request Body: RebalanceRequest (target, optional current)
// Response: 200 OK with map of asset ID to weight delta
// Error: 400 Bad Request if validation fails
func (h *AnalyticsHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RebalanceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRebalanceRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.analyticsService.Rebalance(r.Context(), req))
}

// PlanRebalance converts weight deltas against the live portfolio into
// quantity orders at fresh market prices without executing them.
//
// Endpoint: POST /api/analytics/rebalance/plan
// Request Body: RebalanceRequest (target)
// Response: 200 OK with array of RebalanceOrder
// Error: 400 Bad Request if validation fails
// Error: 503 Service Unavailable if any involved price is unavailable
func (h *AnalyticsHandler) PlanRebalance(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RebalanceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRebalanceRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	orders, err := h.portfolioService.PlanRebalance(r.Context(), req.Target)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRebalance)
		return
	}

	response.RespondJSON(w, http.StatusOK, orders)
}

// ExecuteRebalance plans and applies rebalance orders. Orders applied
// before a failure stay applied.
//
// Endpoint: POST /api/analytics/rebalance/execute
// Request Body: RebalanceRequest (target)
// Response: 200 OK with array of executed RebalanceOrder
// Error: 400 Bad Request if validation fails
// Error: 503 Service Unavailable if any involved price is unavailable
// Error: 500 Internal Server Error if an order cannot be applied
func (h *AnalyticsHandler) ExecuteRebalance(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RebalanceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRebalanceRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	executed, err := h.portfolioService.ExecuteRebalance(r.Context(), req.Target)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRebalance)
		return
	}

	response.RespondJSON(w, http.StatusOK, executed)
}
